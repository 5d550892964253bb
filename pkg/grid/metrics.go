package grid

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MetricsConfig configures grid metrics.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vgrid").
	Namespace string

	// Subsystem is the metrics subsystem (default: "grid").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for durations.
	// Default: exponential from 50µs.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures grid metrics.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) MetricsOption {
	return func(c *MetricsConfig) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) MetricsOption {
	return func(c *MetricsConfig) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) MetricsOption {
	return func(c *MetricsConfig) {
		c.Registry = registry
	}
}

func defaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Namespace: "vgrid",
		Subsystem: "grid",
		Buckets:   prometheus.ExponentialBuckets(0.00005, 4, 8),
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics holds the Prometheus collectors for one or more grids. A nil
// *Metrics records nothing.
type Metrics struct {
	rowsMaterialized    prometheus.Counter
	materializeErrors   prometheus.Counter
	materializeDuration prometheus.Histogram
	bulkDuration        *prometheus.HistogramVec
	rowReplacements     prometheus.Counter
	delegatedEvents     *prometheus.CounterVec
	liveRows            prometheus.Gauge
}

// NewMetrics registers the grid collectors.
//
// Metrics collected:
//   - vgrid_grid_rows_materialized_total
//   - vgrid_grid_materialize_errors_total
//   - vgrid_grid_materialize_duration_seconds
//   - vgrid_grid_bulk_duration_seconds{op}
//   - vgrid_grid_row_replacements_total
//   - vgrid_grid_delegated_events_total{type,outcome}
//   - vgrid_grid_rows
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		rowsMaterialized: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rows_materialized_total",
			Help:        "Total number of rows rendered from the row skeleton",
			ConstLabels: config.ConstLabels,
		}),

		materializeErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "materialize_errors_total",
			Help:        "Total number of failed row materializations",
			ConstLabels: config.ConstLabels,
		}),

		materializeDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "materialize_duration_seconds",
			Help:        "Time to bind, render and clone one row",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		bulkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "bulk_duration_seconds",
			Help:        "Duration of bulk row builds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}, []string{"op"}),

		rowReplacements: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "row_replacements_total",
			Help:        "Total number of single-row replacements",
			ConstLabels: config.ConstLabels,
		}),

		delegatedEvents: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "delegated_events_total",
			Help:        "Delegated events by type and outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"type", "outcome"}),

		liveRows: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "rows",
			Help:        "Number of rows currently held by grids",
			ConstLabels: config.ConstLabels,
		}),
	}
}

func (m *Metrics) materialized(d time.Duration) {
	if m == nil {
		return
	}
	m.rowsMaterialized.Inc()
	m.materializeDuration.Observe(d.Seconds())
}

func (m *Metrics) materializeFailed() {
	if m == nil {
		return
	}
	m.materializeErrors.Inc()
}

func (m *Metrics) bulk(op string, d time.Duration) {
	if m == nil {
		return
	}
	m.bulkDuration.WithLabelValues(op).Observe(d.Seconds())
}

func (m *Metrics) replaced() {
	if m == nil {
		return
	}
	m.rowReplacements.Inc()
}

func (m *Metrics) event(typ, outcome string) {
	if m == nil {
		return
	}
	m.delegatedEvents.WithLabelValues(typ, outcome).Inc()
}

func (m *Metrics) rowsChanged(delta int) {
	if m == nil || delta == 0 {
		return
	}
	m.liveRows.Add(float64(delta))
}
