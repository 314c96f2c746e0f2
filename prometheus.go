package lanegrep

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusCollector is a MetricsCollector backed by Prometheus instruments.
type PrometheusCollector struct {
	files          *prometheus.CounterVec
	fileLatency    prometheus.Histogram
	bytes          prometheus.Counter
	matches        prometheus.Counter
	dropped        prometheus.Counter
	windows        prometheus.Counter
	lanes          prometheus.Counter
	windowLatency  prometheus.Histogram
	windowBytes    prometheus.Histogram
	registeredWith prometheus.Registerer
}

// NewPrometheusCollector creates the instruments and registers them with reg.
// A nil reg registers with prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	c := &PrometheusCollector{
		files: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lanegrep_files_total",
			Help: "Inputs searched, by status",
		}, []string{"status"}),
		fileLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lanegrep_file_duration_seconds",
			Help:    "Time to search one input",
			Buckets: prometheus.DefBuckets,
		}),
		bytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lanegrep_bytes_searched_total",
			Help: "Bytes streamed through the device",
		}),
		matches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lanegrep_matches_total",
			Help: "Matching lines reported",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lanegrep_matches_dropped_total",
			Help: "Matches lost because the match buffer was full",
		}),
		windows: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lanegrep_windows_total",
			Help: "Device launches",
		}),
		lanes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "lanegrep_lanes_total",
			Help: "Lanes launched",
		}),
		windowLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lanegrep_window_duration_seconds",
			Help:    "Copy and launch time of one window",
			Buckets: prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
		windowBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "lanegrep_window_bytes",
			Help:    "Size of one window",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
		}),
		registeredWith: reg,
	}

	var registered []prometheus.Collector
	for _, col := range c.collectors() {
		if err := reg.Register(col); err != nil {
			for _, r := range registered {
				reg.Unregister(r)
			}
			return nil, err
		}
		registered = append(registered, col)
	}
	return c, nil
}

func (c *PrometheusCollector) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		c.files, c.fileLatency, c.bytes, c.matches, c.dropped,
		c.windows, c.lanes, c.windowLatency, c.windowBytes,
	}
}

// Unregister removes the instruments from the registerer.
func (c *PrometheusCollector) Unregister() {
	for _, col := range c.collectors() {
		c.registeredWith.Unregister(col)
	}
}

// RecordFile implements MetricsCollector.
func (c *PrometheusCollector) RecordFile(bytes int64, matches int, dropped uint64, duration time.Duration, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.files.WithLabelValues(status).Inc()
	c.fileLatency.Observe(duration.Seconds())
	if err != nil {
		return
	}
	c.bytes.Add(float64(bytes))
	c.matches.Add(float64(matches))
	c.dropped.Add(float64(dropped))
}

// RecordWindow implements MetricsCollector.
func (c *PrometheusCollector) RecordWindow(lanes int, bytes int, duration time.Duration) {
	c.windows.Inc()
	c.lanes.Add(float64(lanes))
	c.windowLatency.Observe(duration.Seconds())
	c.windowBytes.Observe(float64(bytes))
}
