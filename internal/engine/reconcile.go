package engine

import (
	"bytes"
	"cmp"
	"slices"

	"github.com/RoaringBitmap/roaring/v2/roaring64"

	"github.com/hupe1980/lanegrep/internal/device"
)

// reconcile reads back the records published since the previous input,
// orders them by position and keeps one record per line start.
//
// Only slots below the buffer capacity are read. Publications beyond it are
// counted as dropped.
func (e *Engine) reconcile(label string, data []byte, res *FileResult) {
	total := e.counter.Load()
	from := e.baseline
	e.baseline = total

	recs := e.records.ReadBack(from, total)
	res.Dropped = (total - from) - uint64(len(recs))

	slices.SortFunc(recs, func(a, b device.Record) int {
		return cmp.Compare(a.Start, b.Start)
	})

	if !e.cfg.Label {
		label = ""
	}

	seen := roaring64.New()
	size := uint64(len(data))
	res.Matches = make([]Match, 0, len(recs))
	for _, r := range recs {
		if r.Start > r.End || r.End > size {
			continue
		}
		if !seen.CheckedAdd(r.Start) {
			res.Duplicates++
			continue
		}
		res.Matches = append(res.Matches, Match{
			Label: label,
			Start: int64(r.Start),
			End:   int64(r.End),
			Line:  bytes.Clone(data[r.Start:r.End]),
		})
	}
}
