// Package telemetry holds the Prometheus metrics and OpenTelemetry helpers
// shared by the resolver, the loader cache and the navigator.
package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeMatch        = "match"
	OutcomeRedirect     = "redirect"
	OutcomeNotFound     = "not_found"
	OutcomeRedirectLoop = "redirect_loop"
	OutcomeMounted      = "mounted"
	OutcomeLoadError    = "load_error"
	OutcomeMountError   = "mount_error"
	OutcomeSuperseded   = "superseded"
	OutcomeCancelled    = "cancelled"

	LoadHit   = "hit"
	LoadMiss  = "miss"
	LoadError = "error"
)

// MetricsConfig configures the collectors.
type MetricsConfig struct {
	// Namespace is the metrics namespace (default: "vroute").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the load duration histogram buckets.
	// Default: prometheus.DefBuckets
	Buckets []float64

	// Registry is where collectors are registered.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer
}

// MetricsOption configures the collectors.
type MetricsOption func(*MetricsConfig)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) MetricsOption {
	return func(c *MetricsConfig) {
		c.Subsystem = subsystem
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
		Namespace: "vroute",
		Buckets:   prometheus.DefBuckets,
		Registry:  prometheus.DefaultRegisterer,
	}
}

// Metrics records resolution, loading and navigation activity.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	resolutions  *prometheus.CounterVec
	redirects    prometheus.Counter
	loads        *prometheus.CounterVec
	loadDuration prometheus.Histogram
	cachedViews  prometheus.Gauge
	navigations  *prometheus.CounterVec
}

// NewMetrics creates and registers the collectors.
//
// Metrics collected:
//   - vroute_resolutions_total: resolutions by outcome
//   - vroute_redirects_total: redirect hops followed
//   - vroute_loads_total: loader cache lookups by outcome (hit, miss, error)
//   - vroute_load_duration_seconds: duration of underlying view loads
//   - vroute_cached_views: number of views held by the loader cache
//   - vroute_navigations_total: navigations by outcome
func NewMetrics(opts ...MetricsOption) *Metrics {
	config := defaultMetricsConfig()
	for _, opt := range opts {
		opt(&config)
	}
	factory := promauto.With(config.Registry)

	return &Metrics{
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "resolutions_total",
			Help:        "Total number of path resolutions by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		redirects: factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "redirects_total",
			Help:        "Total number of redirect hops followed",
			ConstLabels: config.ConstLabels,
		}),

		loads: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "loads_total",
			Help:        "Total number of view load requests by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),

		loadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "load_duration_seconds",
			Help:        "Duration of underlying view loads in seconds",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		cachedViews: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "cached_views",
			Help:        "Number of views held by the loader cache",
			ConstLabels: config.ConstLabels,
		}),

		navigations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "navigations_total",
			Help:        "Total number of navigations by outcome",
			ConstLabels: config.ConstLabels,
		}, []string{"outcome"}),
	}
}

// RecordResolution counts one resolution.
func (m *Metrics) RecordResolution(outcome string) {
	if m == nil {
		return
	}
	m.resolutions.WithLabelValues(outcome).Inc()
}

// RecordRedirect counts one followed redirect hop.
func (m *Metrics) RecordRedirect() {
	if m == nil {
		return
	}
	m.redirects.Inc()
}

// RecordLoad counts one cache lookup.
func (m *Metrics) RecordLoad(outcome string) {
	if m == nil {
		return
	}
	m.loads.WithLabelValues(outcome).Inc()
}

// ObserveLoad records the duration of an underlying load.
func (m *Metrics) ObserveLoad(d time.Duration) {
	if m == nil {
		return
	}
	m.loadDuration.Observe(d.Seconds())
}

// SetCachedViews sets the cache size gauge.
func (m *Metrics) SetCachedViews(n int) {
	if m == nil {
		return
	}
	m.cachedViews.Set(float64(n))
}

// RecordNavigation counts one navigation.
func (m *Metrics) RecordNavigation(outcome string) {
	if m == nil {
		return
	}
	m.navigations.WithLabelValues(outcome).Inc()
}
