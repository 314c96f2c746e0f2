package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configName is the config file name without extension.
const configName = ".lanegrep"

// configType is the config file format.
const configType = "yaml"

// envPrefix is the environment variable prefix for lanegrep settings.
const envPrefix = "LANEGREP"

// envKeySeparator is the nested key separator in environment variable names.
const envKeySeparator = "_"

// FlagKeys maps command-line flag names to configuration keys.
var FlagKeys = map[string]string{
	"lanes":            "device.lanes",
	"chunk-size":       "device.chunk_size",
	"group-size":       "device.group_size",
	"workers":          "device.workers",
	"device-memory":    "device.memory",
	"transfer-limit":   "device.transfer_limit",
	"capacity":         "search.capacity",
	"per-file-reset":   "search.per_file_reset",
	"decompress":       "search.decompress",
	"max-decoded-size": "search.max_decoded_size",
	"color":            "output.color",
	"log-level":        "log.level",
	"log-format":       "log.format",
}

// LoadConfig loads configuration from flags, env vars, file and defaults,
// in that order of precedence.
// If configPath is non-empty, it is used as the explicit config file path.
// Otherwise, the config file is searched in CWD and $HOME.
// Missing config file is not an error; defaults are used.
// flags may be nil; only flags that were set on the command line override.
func LoadConfig(configPath string, flags *pflag.FlagSet) (*Config, error) {
	viperCfg := viper.New()

	applyDefaults(viperCfg)

	viperCfg.SetConfigType(configType)
	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", envKeySeparator))
	viperCfg.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := viperCfg.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(configName)
		viperCfg.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viperCfg.AddConfigPath(home)
		}
	}

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFound) {
			return nil, fmt.Errorf("read config: %w", readErr)
		}
	}

	var cfg Config

	unmarshalErr := viperCfg.Unmarshal(&cfg)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("unmarshal config: %w", unmarshalErr)
	}

	validateErr := cfg.Validate()
	if validateErr != nil {
		return nil, fmt.Errorf("validate config: %w", validateErr)
	}

	return &cfg, nil
}

func applyDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("device.lanes", DefaultLanes)
	viperCfg.SetDefault("device.chunk_size", DefaultChunkSize)
	viperCfg.SetDefault("device.group_size", DefaultGroupSize)
	viperCfg.SetDefault("device.workers", DefaultWorkers)
	viperCfg.SetDefault("device.memory", DefaultDeviceMemory)
	viperCfg.SetDefault("device.transfer_limit", DefaultTransferLimit)

	viperCfg.SetDefault("search.capacity", DefaultCapacity)
	viperCfg.SetDefault("search.per_file_reset", DefaultPerFileReset)
	viperCfg.SetDefault("search.decompress", DefaultDecompress)
	viperCfg.SetDefault("search.max_decoded_size", DefaultMaxDecodedSize)

	viperCfg.SetDefault("output.color", DefaultColor)

	viperCfg.SetDefault("log.level", DefaultLogLevel)
	viperCfg.SetDefault("log.format", DefaultLogFormat)
}
