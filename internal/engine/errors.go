package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrClosed is returned when an operation is attempted on a closed engine.
	ErrClosed = errors.New("engine closed")

	// ErrInvalidArgument is returned when the engine configuration is invalid.
	ErrInvalidArgument = errors.New("invalid argument")
)

// Op names the stage of per-file processing that failed.
type Op string

const (
	OpOpen     Op = "open"
	OpStat     Op = "stat"
	OpMap      Op = "map"
	OpDecode   Op = "decode"
	OpAlloc    Op = "alloc"
	OpTransfer Op = "transfer"
	OpLaunch   Op = "launch"
)

// FileError is a failure confined to one input. The run can continue with
// the next file.
type FileError struct {
	Path string
	Op   Op
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error { return e.Err }
