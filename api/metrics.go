package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the service's Prometheus collectors. Each instance owns its
// registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	calculations *prometheus.CounterVec
	duration     prometheus.Histogram
	monthsPerRun prometheus.Histogram
	cacheHits    prometheus.Counter
	cacheMisses  prometheus.Counter
	storeErrors  *prometheus.CounterVec
}

// NewMetrics registers all collectors on a fresh registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		calculations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_ledger",
			Name:      "payroll_calculations_total",
			Help:      "Payroll calculations by result.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "farm_ledger",
			Name:      "payroll_calculation_seconds",
			Help:      "Time spent fetching and aggregating a payroll range.",
			Buckets:   prometheus.DefBuckets,
		}),
		monthsPerRun: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "farm_ledger",
			Name:      "payroll_months_fetched",
			Help:      "Months fetched per payroll calculation.",
			Buckets:   []float64{1, 2, 3, 6, 12, 24},
		}),
		cacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "farm_ledger",
			Name:      "attendance_cache_hits_total",
			Help:      "Month reads served from cache.",
		}),
		cacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "farm_ledger",
			Name:      "attendance_cache_misses_total",
			Help:      "Month reads that went to the store.",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "farm_ledger",
			Name:      "store_errors_total",
			Help:      "Unexpected store failures by operation.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.calculations,
		m.duration,
		m.monthsPerRun,
		m.cacheHits,
		m.cacheMisses,
		m.storeErrors,
	)
	return m
}

// ObserveCalculation records one payroll run.
func (m *Metrics) ObserveCalculation(months int, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.calculations.WithLabelValues(result).Inc()
	m.duration.Observe(elapsed.Seconds())
	m.monthsPerRun.Observe(float64(months))
}

func (m *Metrics) CacheHit()  { m.cacheHits.Inc() }
func (m *Metrics) CacheMiss() { m.cacheMisses.Inc() }

// StoreError counts an unexpected failure for op.
func (m *Metrics) StoreError(op string) {
	m.storeErrors.WithLabelValues(op).Inc()
}

// Registry exposes the registry for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves /metrics.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
