// Package engine drives whole files through the device.
//
// The engine orchestrates:
//   - host mapping of the input (and optional decompression)
//   - a single scratch device buffer reused for every window of a file
//   - copy, launch, synchronise per window, strictly one window at a time
//   - read-back of the shared match buffer, clamped to its capacity
//   - sorting and exactly-once filtering of records into file order
//
// The match counter and buffer are shared by every file of one Engine. Each
// file reads the records between the previous file's final count and its own,
// so once the buffer is full later matches are dropped unless the engine was
// configured to reset between files.
package engine
