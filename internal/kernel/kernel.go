// Package kernel implements the per-lane line match kernel.
//
// Each lane owns the half-open interval [cursor, bound) of the window given
// by its plan. A lane reports exactly the lines whose terminating separator
// lies inside its interval; the unterminated last line of a window belongs
// to the lane whose bound is the window end. To find the first such line a
// lane scans backwards from its cursor to the start of the line it begins
// in, so a line straddling a lane cut is re-scanned by the next lane instead
// of being handed over.
package kernel

import (
	"bytes"

	"github.com/segmentio/asm/ascii"

	"github.com/hupe1980/lanegrep/internal/device"
	"github.com/hupe1980/lanegrep/internal/pattern"
	"github.com/hupe1980/lanegrep/internal/plan"
)

const separator = '\n'

// SearchConfig is the device-resident search state shared read-only by all
// lanes, apart from the counter and buffer it points to.
type SearchConfig struct {
	lit     []byte
	anchor  pattern.Anchor
	fold    bool
	invert  bool
	records *device.RecordBuffer
	counter *device.Counter
}

// NewSearchConfig mirrors p for the device. The literal is copied so the
// config does not alias host memory.
func NewSearchConfig(p pattern.Compiled, records *device.RecordBuffer, counter *device.Counter) *SearchConfig {
	return &SearchConfig{
		lit:     bytes.Clone(p.Bytes()),
		anchor:  p.Anchor(),
		fold:    p.Fold(),
		invert:  p.Invert(),
		records: records,
		counter: counter,
	}
}

// New returns the kernel for one launch over window, partitioned by p.
// window must be exactly p.WindowSize bytes long.
func New(cfg *SearchConfig, window []byte, p plan.Plan) device.Kernel {
	return func(lane int) {
		cfg.scanLane(window, p, lane)
	}
}

func (c *SearchConfig) scanLane(window []byte, p plan.Plan, lane int) {
	cursor, bound := p.Bounds(lane)
	if cursor >= bound {
		return
	}
	size := len(window)

	// Back up to the start of the line containing cursor.
	start := bytes.LastIndexByte(window[:cursor], separator) + 1

	for start < size {
		end := size
		if i := bytes.IndexByte(window[start:], separator); i >= 0 {
			end = start + i
		}

		owned := end < bound || (end == size && bound == size)
		if !owned {
			return
		}

		if c.matchLine(window, start, end) != c.invert {
			c.publish(p.WindowOffset, start, end)
		}
		start = end + 1
	}
}

func (c *SearchConfig) matchLine(window []byte, start, end int) bool {
	n := len(c.lit)
	switch c.anchor {
	case pattern.PrefixOnly:
		return c.matchAt(window, start, end)
	case pattern.SuffixOnly:
		return end-n >= start && c.matchAt(window, end-n, end)
	default:
		if !c.fold {
			return bytes.Index(window[start:end], c.lit) >= 0
		}
		for off := start; off+n <= end; off++ {
			if c.matchAt(window, off, end) {
				return true
			}
		}
		return false
	}
}

// matchAt is the literal primitive: the literal must fit in [off, limit).
func (c *SearchConfig) matchAt(window []byte, off, limit int) bool {
	n := len(c.lit)
	if off < 0 || off+n > limit || limit > len(window) {
		return false
	}
	if n == 0 {
		return true
	}
	if !c.fold {
		return bytes.Equal(window[off:off+n], c.lit)
	}
	return ascii.EqualFold(window[off:off+n], c.lit)
}

func (c *SearchConfig) publish(base int64, start, end int) {
	slot := c.counter.Add() - 1
	c.records.Store(slot, device.Record{
		Start: uint64(base) + uint64(start),
		End:   uint64(base) + uint64(end),
	})
}
