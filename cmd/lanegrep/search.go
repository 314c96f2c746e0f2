package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/hupe1980/lanegrep"
)

const stdinLabel = "(standard input)"

// fileStats is one row of the --stats table.
type fileStats struct {
	Path    string
	Format  string
	Bytes   int64
	Windows int
	Lanes   int
	Matches int
	Dropped uint64
	Elapsed time.Duration
	Err     error
}

// runner searches the inputs named on the command line in order. Errors
// confined to one input are reported and the run continues.
type runner struct {
	searcher *lanegrep.Searcher
	printer  *printer
	stdin    io.Reader
	stderr   io.Writer
	count    bool
	labels   bool

	matched  bool
	troubled bool
	results  []fileStats
}

func (r *runner) searchPath(ctx context.Context, path string, recursive bool) error {
	if path == "-" {
		return r.searchStdin(ctx)
	}
	if recursive {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			return r.walk(ctx, path)
		}
	}
	return r.searchFile(ctx, path)
}

// walk searches every regular file below root. Symbolic links are not
// followed.
func (r *runner) walk(ctx context.Context, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			r.report(err)
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		return r.searchFile(ctx, path)
	})
}

func (r *runner) searchFile(ctx context.Context, path string) error {
	res, err := r.searcher.SearchResult(ctx, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if !lanegrep.IsFileError(err) {
			return err
		}
		r.report(err)
		r.results = append(r.results, fileStats{Path: path, Err: err})
		return nil
	}

	r.emit(path, res.Matches)
	r.results = append(r.results, fileStats{
		Path:    path,
		Format:  res.Format,
		Bytes:   res.Bytes,
		Windows: res.Windows,
		Lanes:   res.Lanes,
		Matches: len(res.Matches),
		Dropped: res.Dropped,
		Elapsed: res.Elapsed,
	})
	return nil
}

func (r *runner) searchStdin(ctx context.Context) error {
	start := time.Now()
	ms, err := r.searcher.SearchReader(ctx, stdinLabel, r.stdin)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		r.report(err)
		r.results = append(r.results, fileStats{Path: stdinLabel, Err: err})
		return nil
	}

	r.emit(stdinLabel, ms)
	r.results = append(r.results, fileStats{
		Path:    stdinLabel,
		Format:  "stream",
		Matches: len(ms),
		Elapsed: time.Since(start),
	})
	return nil
}

func (r *runner) emit(path string, ms []lanegrep.Match) {
	if len(ms) > 0 {
		r.matched = true
	}
	if !r.count {
		r.printer.matches(ms)
		return
	}
	label := ""
	if r.labels {
		label = path
	}
	r.printer.count(label, len(ms))
}

func (r *runner) report(err error) {
	r.troubled = true
	fmt.Fprintf(r.stderr, "lanegrep: %v\n", err)
}
