package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"
	"time"

	"github.com/hupe1980/lanegrep/internal/decode"
	"github.com/hupe1980/lanegrep/internal/device"
	"github.com/hupe1980/lanegrep/internal/kernel"
	"github.com/hupe1980/lanegrep/internal/mmap"
	"github.com/hupe1980/lanegrep/internal/pattern"
	"github.com/hupe1980/lanegrep/internal/plan"
)

// DefaultCapacity is the default number of records the match buffer holds.
const DefaultCapacity = 60000

// Config configures an Engine.
type Config struct {
	Geometry plan.Geometry

	// Capacity is the number of records in the shared match buffer.
	Capacity int

	// Label attaches the input path to every match.
	Label bool

	// Decompress inflates gzip, zstd and lz4 inputs before searching.
	Decompress bool

	// MaxDecodedSize bounds the inflated size of a compressed input.
	MaxDecodedSize int64

	// ResetPerFile clears the match counter before every file so each file
	// gets the full buffer capacity.
	ResetPerFile bool
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Geometry:       plan.DefaultGeometry(),
		Capacity:       DefaultCapacity,
		MaxDecodedSize: decode.DefaultMaxDecodedSize,
	}
}

// Match is one reported line.
type Match struct {
	// Label is the input path, empty unless labelling is enabled.
	Label string
	// Start and End are the byte offsets of the line within the input,
	// excluding the separator.
	Start int64
	End   int64
	// Line is a copy of the line bytes.
	Line []byte
}

// FileResult is the outcome of searching one input.
type FileResult struct {
	Path    string
	Matches []Match
	Bytes   int64
	Format  decode.Format
	Windows int
	Lanes   int
	// Dropped counts matches lost because the match buffer was full.
	Dropped uint64
	// Duplicates counts records discarded by the exactly-once filter.
	Duplicates int
	Elapsed    time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger for the engine.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = l
	}
}

// WithMetricsObserver sets the observer notified of windows and files.
func WithMetricsObserver(o MetricsObserver) Option {
	return func(e *Engine) {
		if o != nil {
			e.metrics = o
		}
	}
}

// Engine searches inputs one at a time on a single device.
type Engine struct {
	dev     *device.Device
	cfg     Config
	search  *kernel.SearchConfig
	records *device.RecordBuffer
	counter *device.Counter

	logger  *slog.Logger
	metrics MetricsObserver

	mu       sync.Mutex
	baseline uint64
	closed   bool
}

// New allocates the shared match buffer on dev and returns an engine for p.
func New(dev *device.Device, p pattern.Compiled, cfg Config, opts ...Option) (*Engine, error) {
	if dev == nil {
		return nil, fmt.Errorf("%w: nil device", ErrInvalidArgument)
	}
	if err := cfg.Geometry.Validate(); err != nil {
		return nil, err
	}
	if cfg.Capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity %d", ErrInvalidArgument, cfg.Capacity)
	}
	if cfg.MaxDecodedSize <= 0 {
		cfg.MaxDecodedSize = decode.DefaultMaxDecodedSize
	}

	records, err := dev.NewRecordBuffer(cfg.Capacity)
	if err != nil {
		return nil, err
	}

	counter := &device.Counter{}
	e := &Engine{
		dev:     dev,
		cfg:     cfg,
		search:  kernel.NewSearchConfig(p, records, counter),
		records: records,
		counter: counter,
		metrics: &NoopMetricsObserver{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Counter returns the number of matches published so far in this run,
// including dropped ones.
func (e *Engine) Counter() uint64 { return e.counter.Load() }

// Overflowed reports whether matches have been dropped since the last reset.
func (e *Engine) Overflowed() bool {
	return e.counter.Load() > uint64(e.records.Capacity())
}

// SearchFile maps the file at path and searches it.
func (e *Engine) SearchFile(ctx context.Context, path string) (*FileResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	res, err := e.searchFile(ctx, path)
	e.finish(res, start, err)
	return res, err
}

// SearchBytes searches an in-memory input. label names it in results and
// errors.
func (e *Engine) SearchBytes(ctx context.Context, label string, data []byte) (*FileResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil, ErrClosed
	}

	start := time.Now()
	res, err := e.searchMapped(ctx, label, data, decode.Plain, nil)
	e.finish(res, start, err)
	return res, err
}

func (e *Engine) finish(res *FileResult, start time.Time, err error) {
	elapsed := time.Since(start)
	if res != nil {
		res.Elapsed = elapsed
		e.metrics.OnFile(res.Bytes, len(res.Matches), res.Dropped, elapsed, err)
	} else {
		e.metrics.OnFile(0, 0, 0, elapsed, err)
	}
}

func (e *Engine) searchFile(ctx context.Context, path string) (*FileResult, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, &FileError{Path: path, Op: classifyOpen(err), Err: err}
	}
	defer m.Close()
	_ = m.Advise(mmap.AccessSequential)

	data := m.Bytes()
	format := decode.Plain
	src := m
	if e.cfg.Decompress {
		inflated, f, err := decode.Inflate(data, e.cfg.MaxDecodedSize)
		if err != nil {
			return nil, &FileError{Path: path, Op: OpDecode, Err: err}
		}
		if inflated != nil {
			defer inflated.Close()
			data = inflated.Bytes()
			src = nil
		}
		format = f
	}

	return e.searchMapped(ctx, path, data, format, src)
}

func classifyOpen(err error) Op {
	var pe *fs.PathError
	switch {
	case errors.Is(err, mmap.ErrNotRegular), errors.Is(err, mmap.ErrInvalidSize):
		return OpStat
	case errors.As(err, &pe) && pe.Op == "open":
		return OpOpen
	case errors.As(err, &pe):
		return OpStat
	default:
		return OpMap
	}
}

// searchMapped streams data through the device window by window, then
// reconciles the records published for it. src, when set, is the file
// mapping backing data; the window after the current one is prefetched
// from it.
func (e *Engine) searchMapped(ctx context.Context, label string, data []byte, format decode.Format, src *mmap.Mapping) (*FileResult, error) {
	if e.cfg.ResetPerFile {
		e.counter.Reset()
		e.baseline = 0
	}

	g := e.cfg.Geometry
	size := int64(len(data))
	res := &FileResult{Path: label, Bytes: size, Format: format}

	if size > 0 {
		scratch, err := e.dev.Malloc(plan.ScratchSize(g, size))
		if err != nil {
			return nil, &FileError{Path: label, Op: OpAlloc, Err: err}
		}
		defer e.dev.Free(scratch)

		var offset int64
		for offset < size {
			w := plan.Next(g, offset, size, max(plan.LanesFor(g, size-offset), 1))
			w.Size = alignWindow(data[offset:offset+int64(w.Size)], offset+int64(w.Size) == size)
			if src != nil {
				prefetch(src, offset+int64(w.Size), int64(w.Size))
			}

			if err := e.runWindow(ctx, scratch, data[offset:offset+int64(w.Size)], offset, res); err != nil {
				// Records already published for this input must not leak into
				// the next one.
				e.baseline = e.counter.Load()
				return nil, &FileError{Path: label, Op: opOf(err), Err: err}
			}
			offset += int64(w.Size)
		}
	}

	e.reconcile(label, data, res)
	return res, nil
}

func prefetch(m *mmap.Mapping, offset, size int64) {
	size = min(size, int64(m.Size())-offset)
	if size <= 0 {
		return
	}
	if r, err := m.Region(int(offset), int(size)); err == nil {
		_ = r.Advise(mmap.AccessWillNeed)
	}
}

type windowError struct {
	op  Op
	err error
}

func (w *windowError) Error() string { return w.err.Error() }
func (w *windowError) Unwrap() error { return w.err }

func opOf(err error) Op {
	var we *windowError
	if errors.As(err, &we) {
		return we.op
	}
	return OpLaunch
}

func (e *Engine) runWindow(ctx context.Context, scratch *device.Buffer, window []byte, offset int64, res *FileResult) error {
	start := time.Now()

	if err := e.dev.CopyToDevice(ctx, scratch, window); err != nil {
		return &windowError{op: OpTransfer, err: err}
	}

	p := plan.New(e.cfg.Geometry, offset, len(window))
	if err := e.dev.Launch(ctx, p, kernel.New(e.search, scratch.Bytes()[:len(window)], p)); err != nil {
		return &windowError{op: OpLaunch, err: err}
	}

	res.Windows++
	res.Lanes += p.LaneCount
	elapsed := time.Since(start)
	e.metrics.OnWindow(p.LaneCount, len(window), elapsed)

	if e.logger != nil {
		e.logger.Debug("window launched",
			"path", res.Path,
			"offset", offset,
			"bytes", len(window),
			"lanes", p.LaneCount,
			"groups", p.GroupCount,
			"elapsed", elapsed)
	}
	return nil
}

// alignWindow shrinks a window so it ends just after its last separator,
// keeping lines whole across window boundaries. The final window of an input
// and windows without any separator are kept as they are.
func alignWindow(window []byte, last bool) int {
	if last {
		return len(window)
	}
	if i := bytes.LastIndexByte(window, '\n'); i >= 0 {
		return i + 1
	}
	return len(window)
}

// Close releases the match buffer. The device is owned by the caller.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	return e.records.Free()
}
