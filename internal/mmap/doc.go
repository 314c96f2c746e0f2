// Package mmap provides memory-mapped file access and off-heap buffers.
//
// # Usage
//
//	m, err := mmap.Open("access.log")
//	if err != nil { ... }
//	defer m.Close()
//
//	// Zero-copy access to file contents
//	data := m.Bytes()
//
//	// A view of one streamed window
//	region, _ := m.Region(offset, size)
//
//	// Files are scanned front to back
//	m.Advise(mmap.AccessSequential)
//
// # Anonymous Mappings
//
// MapAnon creates read-write anonymous mappings outside the Go heap. The
// device package uses them as accelerator-resident memory and the decode
// package uses them to hold decompressed input.
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: CreateFileMapping/MapViewOfFile and VirtualAlloc (Advise is a no-op)
//
// # Thread Safety
//
// Mapping and Region are safe for concurrent read access. Close is idempotent,
// but callers must ensure no goroutine touches Bytes after Close returns.
package mmap
