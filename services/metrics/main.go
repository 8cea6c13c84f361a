package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "genetics_results"

// Metrics is safe to use as a nil pointer; every method is then a no-op so
// services can be built without a registry in tests.
type Metrics struct {
	AdapterDuration  *prometheus.HistogramVec
	AdapterErrors    *prometheus.CounterVec
	CategoryDuration *prometheus.HistogramVec
	CacheRequests    *prometheus.CounterVec
	CacheEvictions   prometheus.Counter
	QueryVariants    prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		AdapterDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "adapter",
				Name:      "duration_seconds",
				Help:      "Time spent querying one resource",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"category", "resource"},
		),

		AdapterErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "adapter",
				Name:      "errors_total",
				Help:      "Resource queries that failed and were left out of the merge",
			},
			[]string{"category", "resource"},
		),

		CategoryDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "category",
				Name:      "duration_seconds",
				Help:      "Time spent on the whole fan-out of one category",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"category"},
		),

		CacheRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "requests_total",
				Help:      "Disk cache lookups by outcome (hit, miss)",
			},
			[]string{"operation", "outcome"},
		),

		CacheEvictions: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "cache",
				Name:      "evictions_total",
				Help:      "Cache entries removed to stay under the byte budget",
			},
		),

		QueryVariants: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "query",
				Name:      "variants",
				Help:      "Number of variants per accepted query",
				Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
			},
		),
	}
}

// Register adds every collector to the registerer.
func (m *Metrics) Register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{
		m.AdapterDuration,
		m.AdapterErrors,
		m.CategoryDuration,
		m.CacheRequests,
		m.CacheEvictions,
		m.QueryVariants,
	} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAdapter(category, resource string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	m.AdapterDuration.WithLabelValues(category, resource).Observe(elapsed.Seconds())
	if err != nil {
		m.AdapterErrors.WithLabelValues(category, resource).Inc()
	}
}

func (m *Metrics) ObserveCategory(category string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.CategoryDuration.WithLabelValues(category).Observe(elapsed.Seconds())
}

func (m *Metrics) CacheLookup(operation string, hit bool) {
	if m == nil {
		return
	}
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	m.CacheRequests.WithLabelValues(operation, outcome).Inc()
}

func (m *Metrics) CacheEvicted(n int) {
	if m == nil || n == 0 {
		return
	}
	m.CacheEvictions.Add(float64(n))
}

func (m *Metrics) ObserveQuerySize(n int) {
	if m == nil {
		return
	}
	m.QueryVariants.Observe(float64(n))
}
