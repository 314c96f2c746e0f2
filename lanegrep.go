package lanegrep

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"sync/atomic"
	"time"

	"github.com/hupe1980/lanegrep/internal/decode"
	"github.com/hupe1980/lanegrep/internal/device"
	"github.com/hupe1980/lanegrep/internal/engine"
	"github.com/hupe1980/lanegrep/internal/pattern"
	"github.com/hupe1980/lanegrep/internal/scan"
)

// Searcher searches inputs for one pattern on the local device.
//
// Inputs are processed one at a time; concurrent calls are serialised.
// The match buffer is shared by every input searched through the same
// Searcher, see WithBufferCapacity and WithPerFileReset.
type Searcher struct {
	opts    options
	pat     pattern.Compiled
	dev     *device.Device
	eng     *engine.Engine
	logger  *Logger
	metrics MetricsCollector
	closed  atomic.Bool
}

// New compiles raw and initialises the device.
//
// Fatal configuration errors are ErrEmptyPattern, ErrInvalidGeometry,
// ErrInvalidArgument and ErrOutOfMemory.
func New(raw string, optFns ...Option) (*Searcher, error) {
	o := applyOptions(optFns)

	p, err := pattern.Compile(raw, o.caseInsensitive, o.invert)
	if err != nil {
		return nil, translateError(err)
	}
	if err := o.geometry.Validate(); err != nil {
		return nil, translateError(err)
	}

	dev, err := device.Open(device.Config{
		MemoryLimitBytes:    o.deviceMemory,
		TransferBytesPerSec: o.transferLimit,
		MaxGroups:           o.maxGroups,
	})
	if err != nil {
		return nil, &invalidArgumentError{err}
	}

	eng, err := engine.New(dev, p, engine.Config{
		Geometry:       o.geometry,
		Capacity:       o.capacity,
		Label:          o.labels,
		Decompress:     o.decompress,
		MaxDecodedSize: o.maxDecodedSize,
		ResetPerFile:   o.perFileReset,
	},
		engine.WithLogger(o.logger.Logger),
		engine.WithMetricsObserver(metricsObserver{o.metricsCollector}),
	)
	if err != nil {
		_ = dev.Close()
		return nil, translateError(err)
	}

	props := dev.Properties()
	o.logger.LogDevice(context.Background(), props.Name, props.Lanes, props.MemoryBytes)

	return &Searcher{
		opts:    o,
		pat:     p,
		dev:     dev,
		eng:     eng,
		logger:  o.logger,
		metrics: o.metricsCollector,
	}, nil
}

type invalidArgumentError struct{ err error }

func (e *invalidArgumentError) Error() string { return e.err.Error() }

func (e *invalidArgumentError) Unwrap() []error { return []error{ErrInvalidArgument, e.err} }

// Search returns the matching lines of the file at path in file order.
func (s *Searcher) Search(ctx context.Context, path string) ([]Match, error) {
	res, err := s.SearchResult(ctx, path)
	if err != nil {
		return nil, err
	}
	return res.Matches, nil
}

// SearchResult searches the file at path and returns the matches together
// with per-input statistics.
//
// A *FileError means only this input failed; the Searcher stays usable.
func (s *Searcher) SearchResult(ctx context.Context, path string) (*Result, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	fr, err := s.eng.SearchFile(ctx, path)
	return s.result(ctx, path, fr, err)
}

// SearchBytes searches an in-memory input. label names it in matches and
// errors.
func (s *Searcher) SearchBytes(ctx context.Context, label string, data []byte) (*Result, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}
	fr, err := s.eng.SearchBytes(ctx, label, data)
	return s.result(ctx, label, fr, err)
}

func (s *Searcher) result(ctx context.Context, path string, fr *engine.FileResult, err error) (*Result, error) {
	log := s.logger.WithPath(path)
	if err != nil {
		log.LogFile(ctx, 0, 0, err)
		return nil, translateError(err)
	}
	log.LogFile(ctx, fr.Bytes, len(fr.Matches), nil)
	if fr.Dropped > 0 {
		log.LogOverflow(ctx, fr.Dropped, s.opts.capacity)
	}
	return newResult(fr), nil
}

// SearchReader matches r line by line on the host. It serves inputs that
// cannot be mapped, such as standard input or pipes. Decompression applies
// when enabled.
func (s *Searcher) SearchReader(ctx context.Context, label string, r io.Reader) ([]Match, error) {
	if s.closed.Load() {
		return nil, ErrClosed
	}

	start := time.Now()
	log := s.logger.WithPath(label)
	src, done, err := s.streamSource(r)
	if err != nil {
		err = &FileError{Path: label, Op: engine.OpDecode, Err: err}
		s.metrics.RecordFile(0, 0, 0, time.Since(start), err)
		log.LogFile(ctx, 0, 0, err)
		return nil, err
	}
	defer done()
	cr := &countingReader{r: src}

	prefix := ""
	if s.opts.labels {
		prefix = label
	}

	var out []Match
	err = scan.Stream(ctx, cr, s.pat, func(line []byte, off int64) error {
		out = append(out, Match{
			Label: prefix,
			Line:  bytes.Clone(line),
			Start: off,
			End:   off + int64(len(line)),
		})
		return nil
	})
	if errors.Is(err, decode.ErrTooLarge) {
		err = &FileError{Path: label, Op: engine.OpDecode, Err: err}
	}
	s.metrics.RecordFile(cr.n, len(out), 0, time.Since(start), err)
	log.LogFile(ctx, cr.n, len(out), err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Searcher) streamSource(r io.Reader) (io.Reader, func(), error) {
	if !s.opts.decompress {
		return r, func() {}, nil
	}
	br := bufio.NewReader(r)
	head, err := br.Peek(4)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, nil, err
	}
	f := decode.Detect(head)
	if f == decode.Plain {
		return br, func() {}, nil
	}
	src, done, err := decode.NewReader(br, f)
	if err != nil {
		return nil, nil, err
	}
	return decode.LimitReader(src, s.opts.maxDecodedSize), done, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}

// Overflowed reports whether any match has been dropped because the match
// buffer was full.
func (s *Searcher) Overflowed() bool {
	return s.eng.Overflowed()
}

// DeviceInfo describes the device a Searcher runs on.
type DeviceInfo struct {
	Name            string
	Workers         int
	MemoryLimit     int64
	MemoryInUse     int64
	PeakMemoryInUse int64
	Features        []string
}

// Device returns the current device description.
func (s *Searcher) Device() DeviceInfo {
	p := s.dev.Properties()
	return DeviceInfo{
		Name:            p.Name,
		Workers:         p.Lanes,
		MemoryLimit:     p.MemoryBytes,
		MemoryInUse:     s.dev.MemoryUsage(),
		PeakMemoryInUse: s.dev.PeakMemoryUsage(),
		Features:        p.Features,
	}
}

// Close releases the match buffer and the device. It is idempotent.
func (s *Searcher) Close() error {
	if s == nil || !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	return errors.Join(s.eng.Close(), s.dev.Close())
}
