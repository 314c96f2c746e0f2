package lanegrep

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems, or use
// PrometheusCollector.
type MetricsCollector interface {
	// RecordFile is called once per searched input.
	// bytes is the searched (decoded) size, dropped the number of matches
	// lost to a full match buffer, err is nil if successful.
	RecordFile(bytes int64, matches int, dropped uint64, duration time.Duration, err error)

	// RecordWindow is called after each device launch.
	RecordWindow(lanes int, bytes int, duration time.Duration)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFile(int64, int, uint64, time.Duration, error) {}
func (NoopMetricsCollector) RecordWindow(int, int, time.Duration)                {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FileCount        atomic.Int64
	FileErrors       atomic.Int64
	FileTotalNanos   atomic.Int64
	BytesSearched    atomic.Int64
	Matches          atomic.Int64
	Dropped          atomic.Uint64
	WindowCount      atomic.Int64
	LaneCount        atomic.Int64
	WindowTotalNanos atomic.Int64
}

// RecordFile implements MetricsCollector.
func (b *BasicMetricsCollector) RecordFile(bytes int64, matches int, dropped uint64, duration time.Duration, err error) {
	b.FileCount.Add(1)
	b.FileTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.FileErrors.Add(1)
		return
	}
	b.BytesSearched.Add(bytes)
	b.Matches.Add(int64(matches))
	b.Dropped.Add(dropped)
}

// RecordWindow implements MetricsCollector.
func (b *BasicMetricsCollector) RecordWindow(lanes int, _ int, duration time.Duration) {
	b.WindowCount.Add(1)
	b.LaneCount.Add(int64(lanes))
	b.WindowTotalNanos.Add(duration.Nanoseconds())
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	return BasicMetricsStats{
		FileCount:      b.FileCount.Load(),
		FileErrors:     b.FileErrors.Load(),
		FileAvgNanos:   avg(b.FileTotalNanos.Load(), b.FileCount.Load()),
		BytesSearched:  b.BytesSearched.Load(),
		Matches:        b.Matches.Load(),
		Dropped:        b.Dropped.Load(),
		WindowCount:    b.WindowCount.Load(),
		LaneCount:      b.LaneCount.Load(),
		WindowAvgNanos: avg(b.WindowTotalNanos.Load(), b.WindowCount.Load()),
	}
}

func avg(total, count int64) int64 {
	if count == 0 {
		return 0
	}
	return total / count
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	FileCount      int64
	FileErrors     int64
	FileAvgNanos   int64
	BytesSearched  int64
	Matches        int64
	Dropped        uint64
	WindowCount    int64
	LaneCount      int64
	WindowAvgNanos int64
}

// metricsObserver forwards engine events to a MetricsCollector.
type metricsObserver struct {
	c MetricsCollector
}

func (o metricsObserver) OnWindow(lanes int, bytes int, d time.Duration) {
	o.c.RecordWindow(lanes, bytes, d)
}

func (o metricsObserver) OnFile(bytes int64, matches int, dropped uint64, d time.Duration, err error) {
	o.c.RecordFile(bytes, matches, dropped, d, err)
}
