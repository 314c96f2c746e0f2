// Package config loads lanegrep command-line settings from flags, the
// environment and an optional .lanegrep.yaml file.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/hupe1980/lanegrep"
)

// Default values.
const (
	DefaultLanes          = lanegrep.DefaultLaneCeiling
	DefaultChunkSize      = lanegrep.DefaultChunkSize
	DefaultGroupSize      = lanegrep.DefaultGroupSize
	DefaultWorkers        = 0
	DefaultDeviceMemory   = "0"
	DefaultTransferLimit  = "0"
	DefaultCapacity       = lanegrep.DefaultBufferCapacity
	DefaultPerFileReset   = false
	DefaultDecompress     = false
	DefaultMaxDecodedSize = "4GiB"
	DefaultColor          = ColorAuto
	DefaultLogLevel       = "warn"
	DefaultLogFormat      = "text"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Config is the top-level configuration struct for lanegrep.
// Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Device DeviceConfig `mapstructure:"device"`
	Search SearchConfig `mapstructure:"search"`
	Output OutputConfig `mapstructure:"output"`
	Log    LogConfig    `mapstructure:"log"`
}

// DeviceConfig holds device geometry and resource knobs.
type DeviceConfig struct {
	Lanes         int    `mapstructure:"lanes"`
	ChunkSize     int    `mapstructure:"chunk_size"`
	GroupSize     int    `mapstructure:"group_size"`
	Workers       int    `mapstructure:"workers"`
	Memory        string `mapstructure:"memory"`
	TransferLimit string `mapstructure:"transfer_limit"`
}

// SearchConfig holds match buffer and input handling settings.
type SearchConfig struct {
	Capacity       int    `mapstructure:"capacity"`
	PerFileReset   bool   `mapstructure:"per_file_reset"`
	Decompress     bool   `mapstructure:"decompress"`
	MaxDecodedSize string `mapstructure:"max_decoded_size"`
}

// OutputConfig holds presentation settings.
type OutputConfig struct {
	Color string `mapstructure:"color"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidLanes indicates the lane ceiling is not positive.
	ErrInvalidLanes = errors.New("device.lanes must be positive")
	// ErrInvalidChunkSize indicates the chunk size is not positive.
	ErrInvalidChunkSize = errors.New("device.chunk_size must be positive")
	// ErrInvalidGroupSize indicates the group size is not positive.
	ErrInvalidGroupSize = errors.New("device.group_size must be positive")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("device.workers must be non-negative")
	// ErrInvalidCapacity indicates the buffer capacity is not positive.
	ErrInvalidCapacity = errors.New("search.capacity must be positive")
	// ErrInvalidByteSize indicates a size setting could not be parsed.
	ErrInvalidByteSize = errors.New("invalid byte size")
	// ErrInvalidColor indicates an unknown color mode.
	ErrInvalidColor = errors.New("output.color must be auto, always or never")
	// ErrInvalidLogFormat indicates an unknown log format.
	ErrInvalidLogFormat = errors.New("log.format must be text or json")
	// ErrInvalidLogLevel indicates an unknown log level.
	ErrInvalidLogLevel = errors.New("invalid log.level")
)

// Validate checks Config invariants and returns the first error found.
func (c *Config) Validate() error {
	switch {
	case c.Device.Lanes <= 0:
		return ErrInvalidLanes
	case c.Device.ChunkSize <= 0:
		return ErrInvalidChunkSize
	case c.Device.GroupSize <= 0:
		return ErrInvalidGroupSize
	case c.Device.Workers < 0:
		return ErrInvalidWorkers
	case c.Search.Capacity <= 0:
		return ErrInvalidCapacity
	}

	for key, v := range map[string]string{
		"device.memory":           c.Device.Memory,
		"device.transfer_limit":   c.Device.TransferLimit,
		"search.max_decoded_size": c.Search.MaxDecodedSize,
	} {
		if _, err := parseBytes(v); err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
	}

	switch c.Output.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		return ErrInvalidColor
	}

	switch c.Log.Format {
	case "text", "json":
	default:
		return ErrInvalidLogFormat
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// parseBytes accepts humanized sizes ("64MiB", "1 GB"). Empty, "0" and
// "unlimited" mean no limit.
func parseBytes(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" || s == "0" || strings.EqualFold(s, "unlimited") {
		return 0, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, fmt.Errorf("%w %q: %w", ErrInvalidByteSize, s, err)
	}
	if n > 1<<62 {
		return 0, fmt.Errorf("%w %q: too large", ErrInvalidByteSize, s)
	}
	return int64(n), nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return level, nil
}

// NewLogger returns the logger described by Log, writing to w.
func (c *Config) NewLogger(w io.Writer) (*lanegrep.Logger, error) {
	level, err := c.LogLevel()
	if err != nil {
		return nil, err
	}
	if c.Log.Format == "json" {
		return lanegrep.NewJSONLogger(w, level), nil
	}
	return lanegrep.NewTextLogger(w, level), nil
}

// Options translates the configuration into Searcher options.
func (c *Config) Options() ([]lanegrep.Option, error) {
	memory, err := parseBytes(c.Device.Memory)
	if err != nil {
		return nil, fmt.Errorf("device.memory: %w", err)
	}
	transfer, err := parseBytes(c.Device.TransferLimit)
	if err != nil {
		return nil, fmt.Errorf("device.transfer_limit: %w", err)
	}

	opts := []lanegrep.Option{
		lanegrep.WithLaneCeiling(c.Device.Lanes),
		lanegrep.WithChunkSize(c.Device.ChunkSize),
		lanegrep.WithGroupSize(c.Device.GroupSize),
		lanegrep.WithWorkers(c.Device.Workers),
		lanegrep.WithDeviceMemory(memory),
		lanegrep.WithTransferLimit(transfer),
		lanegrep.WithBufferCapacity(c.Search.Capacity),
	}
	if c.Search.PerFileReset {
		opts = append(opts, lanegrep.WithPerFileReset())
	}
	if c.Search.Decompress {
		maxDecoded, err := parseBytes(c.Search.MaxDecodedSize)
		if err != nil {
			return nil, fmt.Errorf("search.max_decoded_size: %w", err)
		}
		opts = append(opts, lanegrep.WithDecompression(maxDecoded))
	}
	return opts, nil
}
