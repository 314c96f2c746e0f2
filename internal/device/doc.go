// Package device models the local accelerator the search kernel runs on.
//
// # Execution Model
//
// A launch runs one Kernel invocation per lane. Lanes are scheduled in
// fixed-size groups; groups run concurrently up to Config.MaxGroups and the
// lanes of one group run back to back on the same goroutine. Launch returns
// only after every lane has finished, which is the synchronisation barrier
// between windows:
//
//	dev, _ := device.Open(device.Config{MemoryLimitBytes: 256 << 20})
//	defer dev.Close()
//
//	buf, _ := dev.Malloc(len(window))
//	_ = dev.CopyToDevice(ctx, buf, window)
//	_ = dev.Launch(ctx, p, func(lane int) { ... })
//
// # Memory
//
// Device memory lives in anonymous mappings outside the Go heap and is
// accounted against a resource.Controller budget. Allocations beyond the
// budget fail with ErrOutOfMemory instead of blocking.
//
// # Shared State
//
// Counter and RecordBuffer are the only state lanes may write. The counter is
// advanced with a single atomic fetch-and-add per match and the slot it hands
// out is written by exactly one lane.
package device
