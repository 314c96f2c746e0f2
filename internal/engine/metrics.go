package engine

import "time"

// MetricsObserver receives engine events.
type MetricsObserver interface {
	// OnWindow is called after every completed launch.
	OnWindow(lanes int, bytes int, d time.Duration)
	// OnFile is called once per input, successful or not.
	OnFile(bytes int64, matches int, dropped uint64, d time.Duration, err error)
}

// NoopMetricsObserver discards all events.
type NoopMetricsObserver struct{}

func (o *NoopMetricsObserver) OnWindow(int, int, time.Duration) {}

func (o *NoopMetricsObserver) OnFile(int64, int, uint64, time.Duration, error) {}
