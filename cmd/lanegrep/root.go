package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/lanegrep"
	"github.com/hupe1980/lanegrep/internal/config"
)

// Exit codes follow grep.
const (
	exitMatch   = 0
	exitNoMatch = 1
	exitTrouble = 2
)

var version = "dev"

type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

type flags struct {
	invert     bool
	ignoreCase bool
	recursive  bool
	noFilename bool
	count      bool
	stats      bool
	configPath string
	metrics    string
}

type app struct {
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
	flags  flags
}

func execute(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	a := &app{stdin: stdin, stdout: stdout, stderr: stderr}
	cmd := a.command()
	cmd.SetArgs(args)
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)

	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	if err != nil {
		fmt.Fprintf(stderr, "lanegrep: %v\n", err)
		return exitTrouble
	}
	return exitMatch
}

func (a *app) command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lanegrep [flags] PATTERN [FILE...]",
		Short: "Search files for a literal pattern on parallel lanes",
		Long: `lanegrep prints the lines of each FILE that contain PATTERN.

PATTERN is a literal. A leading '^' anchors it to the start of a line and a
trailing '$' to the end. With no FILE, or when FILE is -, standard input is
read.

Exit status is 0 if a line matched, 1 if none did and 2 on error.

Settings can also be given in .lanegrep.yaml (current or home directory) or
as LANEGREP_* environment variables, e.g. LANEGREP_DEVICE_LANES=4096.`,
		Args:          cobra.MinimumNArgs(1),
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.run(cmd, args[0], args[1:])
		},
	}

	f := cmd.Flags()
	f.BoolVarP(&a.flags.invert, "invert-match", "v", false, "select non-matching lines")
	f.BoolVarP(&a.flags.ignoreCase, "ignore-case", "i", false, "ignore ASCII case distinctions")
	f.BoolVarP(&a.flags.recursive, "recursive", "r", false, "search directories recursively")
	f.BoolVarP(&a.flags.noFilename, "no-filename", "h", false, "never prefix lines with file names")
	f.BoolVarP(&a.flags.count, "count", "c", false, "print only a count of selected lines per file")
	f.BoolVar(&a.flags.stats, "stats", false, "print per-file statistics to stderr")
	f.StringVar(&a.flags.configPath, "config", "", "config file (default .lanegrep.yaml in . or $HOME)")
	f.StringVar(&a.flags.metrics, "metrics-file", "", "write Prometheus metrics to this file on exit")

	f.Int("lanes", config.DefaultLanes, "maximum lanes per launch")
	f.Int("chunk-size", config.DefaultChunkSize, "bytes per lane")
	f.Int("group-size", config.DefaultGroupSize, "lanes per group")
	f.Int("workers", config.DefaultWorkers, "concurrent lane groups (0 = GOMAXPROCS)")
	f.String("device-memory", config.DefaultDeviceMemory, "device memory limit, e.g. 512MiB (0 = unlimited)")
	f.String("transfer-limit", config.DefaultTransferLimit, "host to device bytes per second (0 = unlimited)")
	f.Int("capacity", config.DefaultCapacity, "match buffer capacity in records")
	f.Bool("per-file-reset", config.DefaultPerFileReset, "give every file the full match buffer")
	f.BoolP("decompress", "z", config.DefaultDecompress, "search inside gzip, zstd and lz4 files")
	f.String("max-decoded-size", config.DefaultMaxDecodedSize, "limit on the decompressed size of one file")
	f.String("color", config.DefaultColor, "colorize file names: auto, always or never")
	f.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn or error")
	f.String("log-format", config.DefaultLogFormat, "log format: text or json")

	// -h is taken by --no-filename, as in grep.
	cmd.Flags().Bool("help", false, "help for lanegrep")

	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return err
	})
	return cmd
}

func (a *app) run(cmd *cobra.Command, raw string, paths []string) error {
	cfg, err := config.LoadConfig(a.flags.configPath, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := cfg.NewLogger(a.stderr)
	if err != nil {
		return err
	}
	opts, err := cfg.Options()
	if err != nil {
		return err
	}
	opts = append(opts, lanegrep.WithLogger(logger))

	if a.flags.invert {
		opts = append(opts, lanegrep.WithInvert())
	}
	if a.flags.ignoreCase {
		opts = append(opts, lanegrep.WithCaseInsensitive())
	}
	labels := !a.flags.noFilename && (a.flags.recursive || len(paths) > 1)
	if labels {
		opts = append(opts, lanegrep.WithLabels())
	}

	var reg *prometheus.Registry
	if a.flags.metrics != "" {
		reg = prometheus.NewRegistry()
		collector, err := lanegrep.NewPrometheusCollector(reg)
		if err != nil {
			return err
		}
		opts = append(opts, lanegrep.WithMetricsCollector(collector))
	}

	s, err := lanegrep.New(raw, opts...)
	if err != nil {
		return err
	}
	defer s.Close()

	p := newPrinter(a.stdout, cfg.Output.Color)
	r := &runner{
		searcher: s,
		printer:  p,
		stdin:    a.stdin,
		stderr:   a.stderr,
		count:    a.flags.count,
		labels:   labels,
	}

	if len(paths) == 0 {
		paths = []string{"-"}
	}
	for _, path := range paths {
		if err := r.searchPath(cmd.Context(), path, a.flags.recursive); err != nil {
			return err
		}
	}

	if err := p.flush(); err != nil {
		return err
	}
	if a.flags.stats {
		writeStats(a.stderr, r.results, s.Device())
	}
	if reg != nil {
		if err := prometheus.WriteToTextfile(a.flags.metrics, reg); err != nil {
			return err
		}
	}

	switch {
	case r.matched:
		return nil
	case r.troubled:
		return &exitError{code: exitTrouble}
	default:
		return &exitError{code: exitNoMatch}
	}
}
