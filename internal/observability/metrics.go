package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// report-sync core.
type Metrics struct {
	SnapshotsReceived prometheus.Counter
	SnapshotsStale    prometheus.Counter
	SnapshotSize      prometheus.Histogram

	ReportsSubmitted prometheus.Counter
	SubmitErrors     prometheus.Counter
	CacheErrors      prometheus.Counter

	SubscriptionActive prometheus.Gauge
	FallbackActive     prometheus.Gauge

	RenderPasses    prometheus.Counter
	MarkersRendered prometheus.Gauge

	StreamClients prometheus.Gauge
}

// NewMetrics creates and registers all core metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotsReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safespot",
			Name:      "snapshots_received_total",
			Help:      "Full report snapshots delivered by the store subscription.",
		}),
		SnapshotsStale: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safespot",
			Name:      "snapshots_stale_total",
			Help:      "Snapshots discarded because a newer one was already applied.",
		}),
		SnapshotSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "safespot",
			Name:      "snapshot_size",
			Help:      "Number of reports per received snapshot.",
			Buckets:   []float64{0, 10, 25, 50, 100, 250, 500, 1000, 2500},
		}),
		ReportsSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safespot",
			Name:      "reports_submitted_total",
			Help:      "Reports successfully persisted to the remote store.",
		}),
		SubmitErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safespot",
			Name:      "submit_errors_total",
			Help:      "Report submissions rejected by the remote store.",
		}),
		CacheErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safespot",
			Name:      "cache_errors_total",
			Help:      "Local cache read/write failures (non-fatal).",
		}),
		SubscriptionActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "safespot",
			Name:      "subscription_active",
			Help:      "1 while the live store subscription is running.",
		}),
		FallbackActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "safespot",
			Name:      "fallback_active",
			Help:      "1 while serving from the local cache (degraded mode).",
		}),
		RenderPasses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "safespot",
			Name:      "render_passes_total",
			Help:      "Marker render passes executed.",
		}),
		MarkersRendered: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "safespot",
			Name:      "markers_rendered",
			Help:      "Report markers currently on the map.",
		}),
		StreamClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "safespot",
			Name:      "stream_clients",
			Help:      "Connected snapshot stream (SSE) consumers.",
		}),
	}

	prometheus.MustRegister(
		m.SnapshotsReceived,
		m.SnapshotsStale,
		m.SnapshotSize,
		m.ReportsSubmitted,
		m.SubmitErrors,
		m.CacheErrors,
		m.SubscriptionActive,
		m.FallbackActive,
		m.RenderPasses,
		m.MarkersRendered,
		m.StreamClients,
	)

	return m
}

// NewMetricsForTesting creates Metrics with a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SnapshotsReceived:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safespot", Name: "snapshots_received_total"}),
		SnapshotsStale:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safespot", Name: "snapshots_stale_total"}),
		SnapshotSize:       prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "safespot", Name: "snapshot_size"}),
		ReportsSubmitted:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safespot", Name: "reports_submitted_total"}),
		SubmitErrors:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safespot", Name: "submit_errors_total"}),
		CacheErrors:        prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safespot", Name: "cache_errors_total"}),
		SubscriptionActive: prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "safespot", Name: "subscription_active"}),
		FallbackActive:     prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "safespot", Name: "fallback_active"}),
		RenderPasses:       prometheus.NewCounter(prometheus.CounterOpts{Namespace: "safespot", Name: "render_passes_total"}),
		MarkersRendered:    prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "safespot", Name: "markers_rendered"}),
		StreamClients:      prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "safespot", Name: "stream_clients"}),
	}
}
