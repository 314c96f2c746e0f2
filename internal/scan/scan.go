// Package scan is the single-lane reference matcher. It serves inputs that
// cannot be mapped, such as standard input, and is the oracle the parallel
// engine is tested against.
package scan

import (
	"bufio"
	"bytes"
	"context"
	"io"

	"github.com/hupe1980/lanegrep/internal/pattern"
)

// MaxLineSize bounds a single line read from a stream.
const MaxLineSize = 64 << 20

// Range is a half-open byte range [Start, End) of a matching line.
type Range struct {
	Start int64
	End   int64
}

// Bytes returns the matching lines of data in file order.
func Bytes(data []byte, p pattern.Compiled) []Range {
	var out []Range
	start := 0
	for start < len(data) {
		end := len(data)
		if i := bytes.IndexByte(data[start:], '\n'); i >= 0 {
			end = start + i
		}
		if p.MatchLine(data[start:end]) {
			out = append(out, Range{Start: int64(start), End: int64(end)})
		}
		start = end + 1
	}
	return out
}

// Stream calls fn for every matching line of r, in order, together with the
// byte offset of the line within the stream. The slice passed to fn is only
// valid until fn returns. Streaming stops at the first error from fn or from
// ctx.
func Stream(ctx context.Context, r io.Reader, p pattern.Compiled, fn func(line []byte, offset int64) error) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), MaxLineSize)
	sc.Split(scanLines)

	var offset int64
	for sc.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := sc.Bytes()
		start := offset
		offset += int64(len(line)) + 1
		if !p.MatchLine(line) {
			continue
		}
		if err := fn(line, start); err != nil {
			return err
		}
	}
	return sc.Err()
}

// scanLines is bufio.ScanLines without carriage return stripping, so a
// stream yields the same lines as the mapped path.
func scanLines(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		return i + 1, data[:i], nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}
