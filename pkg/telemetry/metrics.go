package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics collects scheduler and reconciler counters. It implements both
// reactive.Hooks and vtree.Hooks; register one Metrics value on both sides
// to get a coherent picture of a tick.
type Metrics struct {
	flushes       prometheus.Counter
	flushDuration prometheus.Histogram
	flushPending  prometheus.Histogram
	watcherRuns   prometheus.Counter
	cycles        prometheus.Counter
	patchOps      *prometheus.CounterVec
}

type metricsConfig struct {
	namespace string
	registry  prometheus.Registerer
}

// MetricsOption configures Metrics at construction.
type MetricsOption func(*metricsConfig)

// WithNamespace overrides the metric namespace (default "strand").
func WithNamespace(ns string) MetricsOption {
	return func(c *metricsConfig) { c.namespace = ns }
}

// WithRegistry registers the collectors on reg instead of the default
// Prometheus registry. Tests use this to isolate counters.
func WithRegistry(reg prometheus.Registerer) MetricsOption {
	return func(c *metricsConfig) { c.registry = reg }
}

// NewMetrics creates and registers the collector set.
func NewMetrics(opts ...MetricsOption) *Metrics {
	cfg := metricsConfig{
		namespace: "strand",
		registry:  prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	factory := promauto.With(cfg.registry)

	return &Metrics{
		flushes: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "scheduler",
			Name:      "flushes_total",
			Help:      "Number of completed scheduler flushes.",
		}),
		flushDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: "scheduler",
			Name:      "flush_duration_seconds",
			Help:      "Wall time per scheduler flush.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		flushPending: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: cfg.namespace,
			Subsystem: "scheduler",
			Name:      "flush_pending_watchers",
			Help:      "Watchers pending at flush start.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
		watcherRuns: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "scheduler",
			Name:      "watcher_runs_total",
			Help:      "Watcher re-runs performed by flushes.",
		}),
		cycles: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "scheduler",
			Name:      "cycles_detected_total",
			Help:      "Watchers skipped for exceeding the per-flush re-enqueue ceiling.",
		}),
		patchOps: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: cfg.namespace,
			Subsystem: "reconciler",
			Name:      "patch_ops_total",
			Help:      "Platform mutations applied by the reconciler, by operation.",
		}, []string{"op"}),
	}
}

// FlushStart implements reactive.Hooks.
func (m *Metrics) FlushStart(pending int) {
	m.flushPending.Observe(float64(pending))
}

// FlushEnd implements reactive.Hooks.
func (m *Metrics) FlushEnd(ran int, took time.Duration) {
	m.flushes.Inc()
	m.flushDuration.Observe(took.Seconds())
}

// WatcherRan implements reactive.Hooks.
func (m *Metrics) WatcherRan(id uint64) {
	m.watcherRuns.Inc()
}

// CycleDetected implements reactive.Hooks.
func (m *Metrics) CycleDetected(id uint64) {
	m.cycles.Inc()
}

// OpApplied implements vtree.Hooks.
func (m *Metrics) OpApplied(op string) {
	m.patchOps.WithLabelValues(op).Inc()
}
