package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeometry_Validate(t *testing.T) {
	require.NoError(t, DefaultGeometry().Validate())

	err := Geometry{LaneCeiling: 1, ChunkSize: 0, GroupSize: 1}.Validate()
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestNew_LaneCount(t *testing.T) {
	g := Geometry{LaneCeiling: 8, ChunkSize: 10, GroupSize: 3}

	tests := []struct {
		size         int
		lanes        int
		bytesPerLane int
		groups       int
	}{
		{0, 1, 1, 1},
		{1, 1, 1, 1},
		{10, 1, 10, 1},
		{11, 2, 6, 1},
		{75, 8, 10, 3},
		{200, 8, 25, 3},
	}

	for _, tt := range tests {
		p := New(g, 0, tt.size)
		assert.Equal(t, tt.lanes, p.LaneCount, "size %d", tt.size)
		assert.Equal(t, tt.bytesPerLane, p.BytesPerLane, "size %d", tt.size)
		assert.Equal(t, tt.groups, p.GroupCount, "size %d", tt.size)
	}
}

func TestPlan_BoundsPartitionWindow(t *testing.T) {
	g := Geometry{LaneCeiling: 7, ChunkSize: 3, GroupSize: 2}

	for size := 0; size < 100; size++ {
		p := New(g, 0, size)
		covered := make([]int, size)
		prevBound := 0
		for lane := 0; lane < p.LaneCount; lane++ {
			cursor, bound := p.Bounds(lane)
			assert.Equal(t, prevBound, cursor, "size %d lane %d", size, lane)
			assert.LessOrEqual(t, cursor, bound)
			for i := cursor; i < bound; i++ {
				covered[i]++
			}
			prevBound = bound
		}
		assert.Equal(t, size, prevBound, "size %d", size)
		for i, n := range covered {
			assert.Equal(t, 1, n, "size %d byte %d", size, i)
		}
	}
}

func TestPlan_Group(t *testing.T) {
	p := New(Geometry{LaneCeiling: 10, ChunkSize: 1, GroupSize: 4}, 0, 10)
	require.Equal(t, 3, p.GroupCount)

	first, last := p.Group(0)
	assert.Equal(t, [2]int{0, 4}, [2]int{first, last})
	first, last = p.Group(2)
	assert.Equal(t, [2]int{8, 10}, [2]int{first, last})
}

func TestNext_Schedule(t *testing.T) {
	g := Geometry{LaneCeiling: 4, ChunkSize: 10, GroupSize: 2}

	var ws []Window
	for offset := int64(0); offset < 95; {
		w := Next(g, offset, 95, LanesFor(g, 95-offset))
		ws = append(ws, w)
		offset += int64(w.Size)
	}
	require.Len(t, ws, 3)
	assert.Equal(t, Window{Offset: 0, Size: 40, LaneCount: 4}, ws[0])
	assert.Equal(t, Window{Offset: 40, Size: 40, LaneCount: 4}, ws[1])
	assert.Equal(t, Window{Offset: 80, Size: 15, LaneCount: 2}, ws[2])

	// A window cut back to a line end resumes from the shorter offset.
	w := Next(g, 33, 95, LanesFor(g, 95-33))
	assert.Equal(t, Window{Offset: 33, Size: 40, LaneCount: 4}, w)
	assert.Equal(t, 40, ScratchSize(g, 95))
	assert.Equal(t, 15, ScratchSize(g, 15))
	assert.Equal(t, int64(10), LanesFor(g, 95))
}
