package mmap

import "errors"

// AccessPattern is an madvise-style hint. Hints are advisory and ignored
// where the platform has no equivalent.
type AccessPattern int

const (
	AccessDefault AccessPattern = iota
	// AccessSequential suits a file scanned front to back once.
	AccessSequential
	AccessRandom
	// AccessWillNeed asks for read-ahead of a range about to be streamed.
	AccessWillNeed
	AccessDontNeed
)

var (
	ErrClosed      = errors.New("mmap: mapping is closed")
	ErrInvalidSize = errors.New("mmap: invalid size")
	// ErrOutOfBounds is returned for a region that does not fit the mapping.
	ErrOutOfBounds = errors.New("mmap: out of bounds")
	// ErrNotRegular is returned for directories, devices and other
	// non-regular paths, which cannot be mapped.
	ErrNotRegular = errors.New("mmap: not a regular file")
)
