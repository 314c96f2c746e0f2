// Package resource implements the Controller that governs accelerator resources.
//
//   - Memory: device allocations are accounted against a hard budget
//     (non-blocking, fail-fast)
//   - Transfer: host to device copies are paced by a token bucket
//
// # Memory Management
//
// A weighted semaphore enforces the limit and atomic counters track usage and
// the high-water mark. AcquireMemory returns ErrMemoryLimitExceeded immediately
// when the limit would be exceeded:
//
//	rc := resource.NewController(resource.Config{
//	    MemoryLimitBytes: 256 << 20,
//	})
//
//	if err := rc.AcquireMemory(size); err != nil {
//	    // ErrMemoryLimitExceeded: the allocation fails
//	}
//	defer rc.ReleaseMemory(size)
//
// # Transfer Pacing
//
//	rc := resource.NewController(resource.Config{
//	    TransferBytesPerSec: 1 << 30,
//	})
//
//	if err := rc.AcquireTransfer(ctx, len(window)); err != nil {
//	    return err
//	}
//
// # Nil Safety
//
// All methods handle a nil Controller gracefully - they become no-ops.
package resource
