// Package plan computes lane geometry for a window of file bytes and the
// window schedule for a whole file.
package plan

import (
	"errors"
	"fmt"
)

const (
	// DefaultChunkSize is the per-lane byte quota.
	DefaultChunkSize = 400

	// DefaultGroupSize is the number of lanes scheduled together as one group.
	DefaultGroupSize = 256

	// DefaultLaneCeiling bounds the lanes of a single launch.
	DefaultLaneCeiling = 1 << 20
)

// ErrInvalidGeometry is returned by Geometry.Validate.
var ErrInvalidGeometry = errors.New("plan: invalid geometry")

// Geometry holds the design constants a plan is derived from.
type Geometry struct {
	// LaneCeiling is the upper bound on lanes per launch.
	LaneCeiling int
	// ChunkSize is the per-lane byte quota.
	ChunkSize int
	// GroupSize is the number of lanes per scheduling group.
	GroupSize int
}

// DefaultGeometry returns the default geometry.
func DefaultGeometry() Geometry {
	return Geometry{
		LaneCeiling: DefaultLaneCeiling,
		ChunkSize:   DefaultChunkSize,
		GroupSize:   DefaultGroupSize,
	}
}

// Validate checks that every field is positive.
func (g Geometry) Validate() error {
	if g.LaneCeiling <= 0 || g.ChunkSize <= 0 || g.GroupSize <= 0 {
		return fmt.Errorf("%w: lanes=%d chunk=%d group=%d", ErrInvalidGeometry, g.LaneCeiling, g.ChunkSize, g.GroupSize)
	}
	return nil
}

// WindowBytes is the largest window a single launch may cover.
func (g Geometry) WindowBytes() int64 {
	return int64(g.LaneCeiling) * int64(g.ChunkSize)
}

// Plan is the partition of one window across lanes.
type Plan struct {
	LaneCount    int
	BytesPerLane int
	GroupSize    int
	GroupCount   int
	WindowOffset int64
	WindowSize   int
}

// New derives the plan for a window of windowSize bytes that starts at
// windowOffset within the file.
func New(g Geometry, windowOffset int64, windowSize int) Plan {
	lanes := min(g.LaneCeiling, ceilDiv(windowSize, g.ChunkSize))
	lanes = max(1, lanes)

	return Plan{
		LaneCount:    lanes,
		BytesPerLane: max(1, ceilDiv(windowSize, lanes)),
		GroupSize:    g.GroupSize,
		GroupCount:   ceilDiv(lanes, g.GroupSize),
		WindowOffset: windowOffset,
		WindowSize:   windowSize,
	}
}

// Bounds returns the half-open byte interval [cursor, bound) owned by lane
// before line start adjustment. Intervals of consecutive lanes are adjacent
// and together cover [0, WindowSize) exactly once.
func (p Plan) Bounds(lane int) (cursor, bound int) {
	cursor = min(lane*p.BytesPerLane, p.WindowSize)
	bound = min(p.BytesPerLane*(lane+1), p.WindowSize)
	return cursor, bound
}

// Group returns the lane range [first, last) of group g.
func (p Plan) Group(g int) (first, last int) {
	first = min(g*p.GroupSize, p.LaneCount)
	last = min(first+p.GroupSize, p.LaneCount)
	return first, last
}

// Window is one entry of a file's streaming schedule.
type Window struct {
	Offset    int64
	Size      int
	LaneCount int
}

// Next computes the window starting at offset given the lanes still to be
// scheduled. The caller advances offset by the size it actually streamed,
// which may be less than Size once the window is cut back to a line end.
func Next(g Geometry, offset, fileSize, remainingLanes int64) Window {
	lanes := min(int64(g.LaneCeiling), remainingLanes)
	size := min(g.WindowBytes(), fileSize-offset, lanes*int64(g.ChunkSize))
	return Window{
		Offset:    offset,
		Size:      int(size),
		LaneCount: int(lanes),
	}
}

// ScratchSize is the device buffer size reused across a file's windows.
func ScratchSize(g Geometry, fileSize int64) int {
	return int(min(g.WindowBytes(), fileSize))
}

// LanesFor returns the total lane count needed for n bytes.
func LanesFor(g Geometry, n int64) int64 {
	return ceilDiv64(n, int64(g.ChunkSize))
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func ceilDiv64(a, b int64) int64 {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}
