// Package lanegrep searches files for lines containing a literal pattern,
// using thousands of parallel lanes on a local compute device.
//
// Every input is mapped into memory and streamed through a reusable device
// buffer one window at a time. Each window is split into equal chunks, one
// per lane; lanes recover line boundaries on their own and publish matching
// lines into a shared, fixed-capacity match buffer through an atomic
// counter. After each input the published records are read back, ordered by
// position and emitted exactly once.
//
// # Quick Start
//
//	s, err := lanegrep.New("error", lanegrep.WithCaseInsensitive())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer s.Close()
//
//	matches, err := s.Search(ctx, "/var/log/app.log")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	lanegrep.WriteMatches(os.Stdout, matches)
//
// # Patterns
//
// A pattern is a literal. A leading '^' anchors it to the start of a line and
// a trailing '$' to the end; "^x$" is not special and matches like "^x".
// Matching never crosses a line separator.
//
// # Overflow
//
// The match buffer holds WithBufferCapacity records (60 000 by default) for
// the whole lifetime of a Searcher. Matches published beyond it are counted
// in Result.Dropped and otherwise lost. WithPerFileReset gives every input
// the full capacity instead.
//
// # Observability
//
// Logging uses log/slog through Logger; metrics are reported to a
// MetricsCollector, for which Noop, Basic and Prometheus implementations are
// provided.
package lanegrep
