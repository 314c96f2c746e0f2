package lanegrep

import (
	"log/slog"
	"os"

	"github.com/hupe1980/lanegrep/internal/decode"
	"github.com/hupe1980/lanegrep/internal/engine"
	"github.com/hupe1980/lanegrep/internal/plan"
)

// Default tuning values.
const (
	DefaultLaneCeiling    = plan.DefaultLaneCeiling
	DefaultChunkSize      = plan.DefaultChunkSize
	DefaultGroupSize      = plan.DefaultGroupSize
	DefaultBufferCapacity = engine.DefaultCapacity
	DefaultMaxDecodedSize = decode.DefaultMaxDecodedSize
)

type options struct {
	invert          bool
	caseInsensitive bool
	labels          bool
	perFileReset    bool

	geometry plan.Geometry
	capacity int

	deviceMemory  int64
	transferLimit int64
	maxGroups     int

	decompress     bool
	maxDecodedSize int64

	metricsCollector MetricsCollector
	logger           *Logger
}

// Option configures a Searcher.
type Option func(*options)

// WithInvert reports the lines that do not match.
func WithInvert() Option {
	return func(o *options) {
		o.invert = true
	}
}

// WithCaseInsensitive matches ASCII letters regardless of case.
// Bytes outside A-Z and a-z always compare exactly.
func WithCaseInsensitive() Option {
	return func(o *options) {
		o.caseInsensitive = true
	}
}

// WithLabels prefixes every match with the path it was found in.
func WithLabels() Option {
	return func(o *options) {
		o.labels = true
	}
}

// WithLaneCeiling bounds the number of lanes per launch.
func WithLaneCeiling(n int) Option {
	return func(o *options) {
		o.geometry.LaneCeiling = n
	}
}

// WithChunkSize sets the bytes handed to each lane.
func WithChunkSize(n int) Option {
	return func(o *options) {
		o.geometry.ChunkSize = n
	}
}

// WithGroupSize sets the number of lanes executed together by one worker.
func WithGroupSize(n int) Option {
	return func(o *options) {
		o.geometry.GroupSize = n
	}
}

// WithBufferCapacity sets the number of match records the device buffer
// holds for the lifetime of the Searcher.
func WithBufferCapacity(n int) Option {
	return func(o *options) {
		o.capacity = n
	}
}

// WithPerFileReset gives every input the full buffer capacity instead of
// sharing it across the run.
func WithPerFileReset() Option {
	return func(o *options) {
		o.perFileReset = true
	}
}

// WithDeviceMemory bounds device memory in bytes. 0 means unlimited.
func WithDeviceMemory(bytes int64) Option {
	return func(o *options) {
		o.deviceMemory = bytes
	}
}

// WithTransferLimit paces host to device copies in bytes per second.
// 0 means unlimited.
func WithTransferLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.transferLimit = bytesPerSec
	}
}

// WithWorkers bounds the lane groups executing concurrently.
// 0 uses GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(o *options) {
		o.maxGroups = n
	}
}

// WithDecompression transparently inflates gzip, zstd and lz4 inputs.
// maxDecodedSize bounds the inflated size of one input; 0 selects
// DefaultMaxDecodedSize.
func WithDecompression(maxDecodedSize int64) Option {
	return func(o *options) {
		o.decompress = true
		if maxDecodedSize > 0 {
			o.maxDecodedSize = maxDecodedSize
		}
	}
}

// WithMetricsCollector sets the metrics collector.
//
// If nil is passed, NoopMetricsCollector is used.
func WithMetricsCollector(c MetricsCollector) Option {
	return func(o *options) {
		if c == nil {
			c = NoopMetricsCollector{}
		}
		o.metricsCollector = c
	}
}

// WithLogger sets the logger.
//
// If nil is passed, NoopLogger is used.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithLogLevel logs text to stderr at the given level.
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(os.Stderr, level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		geometry:         plan.DefaultGeometry(),
		capacity:         DefaultBufferCapacity,
		maxDecodedSize:   DefaultMaxDecodedSize,
		metricsCollector: NoopMetricsCollector{},
		logger:           NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
