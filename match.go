package lanegrep

import (
	"bufio"
	"io"
	"time"

	"github.com/hupe1980/lanegrep/internal/engine"
)

// Match is one reported line.
type Match struct {
	// Label is the input the line was found in. It is empty unless
	// WithLabels is set.
	Label string
	// Line is the line content without its separator.
	Line []byte
	// Start and End are the byte offsets of Line within the input.
	Start int64
	End   int64
}

// String renders the match as grep does: "label:line", or just the line when
// there is no label.
func (m Match) String() string {
	if m.Label == "" {
		return string(m.Line)
	}
	return m.Label + ":" + string(m.Line)
}

// WriteMatches writes one match per line to w.
func WriteMatches(w io.Writer, ms []Match) error {
	bw := bufio.NewWriter(w)
	for _, m := range ms {
		if m.Label != "" {
			_, _ = bw.WriteString(m.Label)
			_ = bw.WriteByte(':')
		}
		_, _ = bw.Write(m.Line)
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// Result describes the search of one input.
type Result struct {
	Path    string
	Matches []Match
	// Bytes is the searched size, after decompression.
	Bytes int64
	// Format is the detected input encoding: plain, gzip, zstd or lz4.
	Format  string
	Windows int
	Lanes   int
	// Dropped counts matches lost because the match buffer was full.
	Dropped uint64
	Elapsed time.Duration
}

func newResult(fr *engine.FileResult) *Result {
	ms := make([]Match, len(fr.Matches))
	for i, m := range fr.Matches {
		ms[i] = Match{Label: m.Label, Line: m.Line, Start: m.Start, End: m.End}
	}
	return &Result{
		Path:    fr.Path,
		Matches: ms,
		Bytes:   fr.Bytes,
		Format:  fr.Format.String(),
		Windows: fr.Windows,
		Lanes:   fr.Lanes,
		Dropped: fr.Dropped,
		Elapsed: fr.Elapsed,
	}
}
