package lanegrep

import (
	"errors"
	"fmt"

	"github.com/hupe1980/lanegrep/internal/device"
	"github.com/hupe1980/lanegrep/internal/engine"
	"github.com/hupe1980/lanegrep/internal/pattern"
	"github.com/hupe1980/lanegrep/internal/plan"
)

var (
	// ErrEmptyPattern is returned when no pattern is supplied.
	ErrEmptyPattern = errors.New("empty pattern")

	// ErrInvalidGeometry is returned for a non-positive lane ceiling, chunk
	// size or group size.
	ErrInvalidGeometry = errors.New("invalid lane geometry")

	// ErrInvalidArgument is returned for other invalid configuration.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrOutOfMemory is returned when device memory is exhausted.
	ErrOutOfMemory = errors.New("device out of memory")

	// ErrClosed is returned when the Searcher has been closed.
	ErrClosed = errors.New("searcher closed")
)

// FileError is a failure confined to one input. Op names the failed stage:
// open, stat, map, decode, alloc, transfer or launch.
type FileError = engine.FileError

// IsFileError reports whether err is confined to a single input, in which
// case a run over several inputs can continue.
func IsFileError(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	switch {
	case errors.Is(err, pattern.ErrEmptyPattern):
		return fmt.Errorf("%w: %w", ErrEmptyPattern, err)
	case errors.Is(err, plan.ErrInvalidGeometry):
		return fmt.Errorf("%w: %w", ErrInvalidGeometry, err)
	case errors.Is(err, engine.ErrInvalidArgument):
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	case errors.Is(err, engine.ErrClosed), errors.Is(err, device.ErrClosed):
		return fmt.Errorf("%w: %w", ErrClosed, err)
	case errors.Is(err, device.ErrOutOfMemory):
		return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
	}

	return err
}
