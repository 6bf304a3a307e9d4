package observability

import (
	"time"

	"github.com/ekencleng/kencleng-api/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Metrics holds all Prometheus metrics for the dues service.
type Metrics struct {
	// Registry is the Prometheus registry that owns these metrics.
	// Exposed so the /metrics endpoint can use it.
	Registry *prometheus.Registry

	requestDuration  *prometheus.HistogramVec
	storeErrors      *prometheus.CounterVec
	cacheHits        *prometheus.CounterVec
	cacheMisses      *prometheus.CounterVec
	paymentsRecorded *prometheus.CounterVec
	paymentAmount    prometheus.Counter
	accrualRows      prometheus.Counter
	requestsTotal    *prometheus.CounterVec
}

// NewMetrics creates a dedicated Prometheus registry and registers all
// application metrics in it. Using a private registry avoids "duplicate
// collector" panics when NewMetrics is called more than once (e.g. in tests).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		Registry: reg,

		requestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "kencleng_request_duration_seconds",
				Help:    "Duration of requests by operation.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kencleng_store_errors_total",
				Help: "Total errors from the persistence layer.",
			},
			[]string{"store"},
		),
		cacheHits: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kencleng_cache_hits_total",
				Help: "Total cache hits.",
			},
			[]string{"cache"},
		),
		cacheMisses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kencleng_cache_misses_total",
				Help: "Total cache misses.",
			},
			[]string{"cache"},
		),
		paymentsRecorded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kencleng_payments_recorded_total",
				Help: "Total CREDIT transactions recorded, by recording role.",
			},
			[]string{"role"},
		),
		paymentAmount: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kencleng_payment_amount_rupiah_total",
				Help: "Cumulative rupiah recorded as payments.",
			},
		),
		accrualRows: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "kencleng_accrual_rows_total",
				Help: "Total daily-fee DEBIT rows inserted by the accrual feed.",
			},
		),
		requestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "kencleng_requests_total",
				Help: "Total requests processed.",
			},
			[]string{"status"},
		),
	}
}

// RecordRequestDuration records the duration of an operation.
func (m *Metrics) RecordRequestDuration(operation string, d time.Duration) {
	m.requestDuration.WithLabelValues(operation).Observe(d.Seconds())
}

// IncrStoreError increments the persistence error counter.
func (m *Metrics) IncrStoreError(store string) {
	m.storeErrors.WithLabelValues(store).Inc()
}

// IncrCacheHit increments the cache hit counter.
func (m *Metrics) IncrCacheHit(cache string) {
	m.cacheHits.WithLabelValues(cache).Inc()
}

// IncrCacheMiss increments the cache miss counter.
func (m *Metrics) IncrCacheMiss(cache string) {
	m.cacheMisses.WithLabelValues(cache).Inc()
}

// RecordPayment counts a recorded payment and its amount.
func (m *Metrics) RecordPayment(role string, amount int64) {
	m.paymentsRecorded.WithLabelValues(role).Inc()
	m.paymentAmount.Add(float64(amount))
}

// AddAccrualRows counts DEBIT rows inserted by the daily-fee feed.
func (m *Metrics) AddAccrualRows(n int) {
	m.accrualRows.Add(float64(n))
}

// IncrRequest increments the request counter with a status label.
func (m *Metrics) IncrRequest(status string) {
	m.requestsTotal.WithLabelValues(status).Inc()
}

// GetOpsSnapshot returns a snapshot of operational counters suitable for
// the GET /v1/metrics/ops endpoint.
func (m *Metrics) GetOpsSnapshot() *domain.OpsMetrics {
	var totalRequests, errorCount float64
	for _, class := range []string{"2xx", "3xx", "4xx", "5xx"} {
		v := getCounterValue(m.requestsTotal, class)
		totalRequests += v
		if class == "4xx" || class == "5xx" {
			errorCount += v
		}
	}

	payments := getCounterValue(m.paymentsRecorded, string(domain.RoleAdmin)) +
		getCounterValue(m.paymentsRecorded, string(domain.RoleOfficer))

	cacheHits := getCounterValue(m.cacheHits, "summary")
	cacheMisses := getCounterValue(m.cacheMisses, "summary")

	errorRate := float64(0)
	if totalRequests > 0 {
		errorRate = errorCount / totalRequests
	}
	cacheHitRate := float64(0)
	if cacheHits+cacheMisses > 0 {
		cacheHitRate = cacheHits / (cacheHits + cacheMisses)
	}

	return &domain.OpsMetrics{
		TotalRequests:       int64(totalRequests),
		ErrorRate:           errorRate,
		PaymentsRecorded:    int64(payments),
		AccrualRowsInserted: int64(counterValue(m.accrualRows)),
		CacheHitRate:        cacheHitRate,
		Period:              "all_time",
	}
}

// getCounterValue extracts the current float64 value from a CounterVec for a given label.
func getCounterValue(cv *prometheus.CounterVec, label string) float64 {
	counter := cv.WithLabelValues(label)
	m := &dto.Metric{}
	if err := counter.(prometheus.Metric).Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}

func counterValue(c prometheus.Counter) float64 {
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		return 0
	}
	if m.Counter != nil && m.Counter.Value != nil {
		return *m.Counter.Value
	}
	return 0
}
