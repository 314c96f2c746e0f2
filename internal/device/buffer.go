package device

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/lanegrep/internal/mmap"
	"github.com/hupe1980/lanegrep/internal/resource"
)

// Buffer is a region of device memory.
type Buffer struct {
	dev  *Device
	mem  *mmap.Mapping
	size int

	once sync.Once
	err  error
}

// Malloc allocates size bytes of zeroed device memory.
func (d *Device) Malloc(size int) (*Buffer, error) {
	if size < 0 {
		return nil, fmt.Errorf("device: malloc %d bytes: %w", size, mmap.ErrInvalidSize)
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return nil, ErrClosed
	}

	if err := d.rc.AcquireMemory(int64(size)); err != nil {
		if errors.Is(err, resource.ErrMemoryLimitExceeded) {
			return nil, fmt.Errorf("%w: %d bytes requested, %d of %d in use: %w",
				ErrOutOfMemory, size, d.rc.MemoryUsage(), d.rc.MemoryLimit(), err)
		}
		return nil, err
	}

	mem, err := mmap.MapAnon(size)
	if err != nil {
		d.rc.ReleaseMemory(int64(size))
		return nil, fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	b := &Buffer{dev: d, mem: mem, size: size}
	d.live[b] = struct{}{}
	return b, nil
}

// Free releases the buffer. Freeing twice is a no-op.
func (d *Device) Free(b *Buffer) error {
	if b == nil {
		return nil
	}
	d.mu.Lock()
	if d.live != nil {
		delete(d.live, b)
	}
	d.mu.Unlock()
	return b.release()
}

func (b *Buffer) release() error {
	b.once.Do(func() {
		b.err = b.mem.Close()
		b.dev.rc.ReleaseMemory(int64(b.size))
	})
	return b.err
}

// Len returns the buffer size in bytes.
func (b *Buffer) Len() int { return b.size }

// Bytes returns the device memory, or nil once freed.
func (b *Buffer) Bytes() []byte { return b.mem.Bytes() }

// CopyToDevice copies src into the start of dst and blocks until the copy is
// complete. The copy is paced by the configured transfer limit.
func (d *Device) CopyToDevice(ctx context.Context, dst *Buffer, src []byte) error {
	mem := dst.Bytes()
	if mem == nil && dst.size > 0 {
		return ErrFreed
	}
	if len(src) > dst.size {
		return fmt.Errorf("%w: %d > %d", ErrTransferSize, len(src), dst.size)
	}
	if err := d.rc.AcquireTransfer(ctx, len(src)); err != nil {
		return err
	}
	copy(mem, src)
	return nil
}
