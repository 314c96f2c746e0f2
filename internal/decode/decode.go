// Package decode detects compressed inputs and inflates them into host memory
// so they can be streamed to the device like plain files.
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/hupe1980/lanegrep/internal/mmap"
)

// DefaultMaxDecodedSize bounds the inflated size of a single input.
const DefaultMaxDecodedSize = 4 << 30

// ErrTooLarge is returned when the inflated input exceeds the size bound.
var ErrTooLarge = errors.New("decode: decoded input too large")

// Format is a detected input encoding.
type Format uint8

const (
	// Plain is uncompressed input.
	Plain Format = iota
	// Gzip is RFC 1952 gzip.
	Gzip
	// Zstd is a zstandard frame.
	Zstd
	// LZ4 is an LZ4 frame.
	LZ4
)

func (f Format) String() string {
	switch f {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return "plain"
	}
}

var magics = []struct {
	format Format
	magic  []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{LZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

// Detect inspects the leading bytes of an input.
func Detect(head []byte) Format {
	for _, m := range magics {
		if bytes.HasPrefix(head, m.magic) {
			return m.format
		}
	}
	return Plain
}

// NewReader wraps r with the decompressor for f. The returned closer releases
// decoder state and must be called once reading is done.
func NewReader(r io.Reader, f Format) (io.Reader, func(), error) {
	switch f {
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, nil, err
		}
		return zr, func() { _ = zr.Close() }, nil
	case Zstd:
		zr, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, nil, err
		}
		return zr, zr.Close, nil
	case LZ4:
		return lz4.NewReader(r), func() {}, nil
	default:
		return r, func() {}, nil
	}
}

// Inflate decodes src according to its detected format into an anonymous
// host mapping. Plain input returns (nil, Plain, nil) so callers can keep
// using their own mapping.
func Inflate(src []byte, maxSize int64) (*mmap.Mapping, Format, error) {
	f := Detect(src)
	if f == Plain {
		return nil, Plain, nil
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxDecodedSize
	}

	r, done, err := NewReader(bytes.NewReader(src), f)
	if err != nil {
		return nil, f, fmt.Errorf("decode %s: %w", f, err)
	}
	defer done()

	// First pass sizes the output so it is decoded straight into a mapping
	// of exactly that size; nothing is buffered on the heap.
	n, err := io.Copy(io.Discard, LimitReader(r, maxSize))
	if err != nil {
		return nil, f, fmt.Errorf("decode %s: %w", f, err)
	}

	m, err := mmap.MapAnon(int(n))
	if err != nil {
		return nil, f, err
	}
	r2, done2, err := NewReader(bytes.NewReader(src), f)
	if err != nil {
		_ = m.Close()
		return nil, f, fmt.Errorf("decode %s: %w", f, err)
	}
	defer done2()
	if _, err := io.ReadFull(r2, m.Bytes()); err != nil {
		_ = m.Close()
		return nil, f, fmt.Errorf("decode %s: %w", f, err)
	}
	return m, f, nil
}

// LimitReader returns a reader that yields at most maxSize bytes of r and
// fails with ErrTooLarge if r holds more. A non-positive maxSize selects
// DefaultMaxDecodedSize.
func LimitReader(r io.Reader, maxSize int64) io.Reader {
	if maxSize <= 0 {
		maxSize = DefaultMaxDecodedSize
	}
	return &limitedReader{r: io.LimitReader(r, maxSize+1), max: maxSize}
}

type limitedReader struct {
	r   io.Reader
	max int64
	n   int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	if l.n+int64(n) > l.max {
		keep := int(max(l.max-l.n, 0))
		l.n = l.max + 1
		return keep, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, l.max)
	}
	l.n += int64(n)
	return n, err
}
