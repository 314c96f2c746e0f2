package lanegrep

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// Logger is the structured logger used by a Searcher. Field names are
// shared by all helpers so a run can be filtered by path.
type Logger struct {
	*slog.Logger
}

// NewLogger wraps handler. A nil handler logs text at info level to stderr.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger logs JSON lines at or above level to w.
func NewJSONLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger logs key=value lines at or above level to w.
func NewTextLogger(w io.Writer, level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards everything. It is the default.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithPath adds a path field to the logger. The per-input helpers expect
// a logger scoped this way.
func (l *Logger) WithPath(path string) *Logger {
	return &Logger{Logger: l.With("path", path)}
}

// LogDevice logs the device a Searcher runs on.
func (l *Logger) LogDevice(ctx context.Context, name string, lanes int, memoryBytes int64) {
	l.DebugContext(ctx, "device opened",
		"device", name,
		"lanes", lanes,
		"memory_bytes", memoryBytes,
	)
}

// LogFile logs the outcome of searching one input.
func (l *Logger) LogFile(ctx context.Context, bytes int64, matches int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "search failed", "error", err)
		return
	}
	l.DebugContext(ctx, "search completed",
		"bytes", bytes,
		"matches", matches,
	)
}

// LogOverflow logs matches lost to a full match buffer.
func (l *Logger) LogOverflow(ctx context.Context, dropped uint64, capacity int) {
	l.WarnContext(ctx, "match buffer full, matches dropped",
		"dropped", dropped,
		"capacity", capacity,
	)
}
