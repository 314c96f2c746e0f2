package device

import (
	"encoding/binary"
	"fmt"
)

// RecordSize is the encoded size of one Record in device memory.
const RecordSize = 16

// Record is a half-open byte range [Start, End) of one matching line.
type Record struct {
	Start uint64
	End   uint64
}

// Len returns the length of the range.
func (r Record) Len() uint64 { return r.End - r.Start }

// RecordBuffer is the fixed-capacity match buffer in device memory.
//
// Slots are write-once: a slot is only written by the lane that obtained it
// from the Counter. Slots at or beyond Capacity are never touched.
type RecordBuffer struct {
	buf      *Buffer
	capacity int
}

// NewRecordBuffer allocates a record buffer of the given capacity.
func (d *Device) NewRecordBuffer(capacity int) (*RecordBuffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("device: invalid record capacity %d", capacity)
	}
	buf, err := d.Malloc(capacity * RecordSize)
	if err != nil {
		return nil, err
	}
	return &RecordBuffer{buf: buf, capacity: capacity}, nil
}

// Capacity returns the number of slots.
func (rb *RecordBuffer) Capacity() int { return rb.capacity }

// Store writes r into slot. It returns false, writing nothing, when slot is
// out of range.
func (rb *RecordBuffer) Store(slot uint64, r Record) bool {
	if slot >= uint64(rb.capacity) {
		return false
	}
	mem := rb.buf.Bytes()
	if mem == nil {
		return false
	}
	off := slot * RecordSize
	binary.LittleEndian.PutUint64(mem[off:], r.Start)
	binary.LittleEndian.PutUint64(mem[off+8:], r.End)
	return true
}

// ReadBack copies slots [from, to) back to the host. The range is clamped to
// the capacity so slots past the allocation are never read.
func (rb *RecordBuffer) ReadBack(from, to uint64) []Record {
	to = min(to, uint64(rb.capacity))
	if from >= to {
		return nil
	}
	mem := rb.buf.Bytes()
	if mem == nil {
		return nil
	}

	out := make([]Record, 0, to-from)
	for slot := from; slot < to; slot++ {
		off := slot * RecordSize
		out = append(out, Record{
			Start: binary.LittleEndian.Uint64(mem[off:]),
			End:   binary.LittleEndian.Uint64(mem[off+8:]),
		})
	}
	return out
}

// Free releases the device memory of the buffer.
func (rb *RecordBuffer) Free() error {
	return rb.buf.dev.Free(rb.buf)
}
