package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	globalMetrics *Metrics
	globalMu      sync.RWMutex
)

// Metrics holds all Prometheus metrics for Planry
type Metrics struct {
	// Sessions
	SessionsActive       prometheus.Gauge
	SessionsCreatedTotal prometheus.Counter
	SessionsExpiredTotal prometheus.Counter

	// Plan operations
	PlanMutationsTotal *prometheus.CounterVec
	PlanErrorsTotal    *prometheus.CounterVec

	// Exports and archive
	ExportsTotal   *prometheus.CounterVec
	ArchiveEntries prometheus.Gauge

	// API metrics
	APIRequestsTotal          *prometheus.CounterVec
	APIRequestDurationSeconds *prometheus.HistogramVec
	APIErrorsTotal            *prometheus.CounterVec
	APIRateLimitedTotal       *prometheus.CounterVec

	// System metrics
	UptimeSeconds    prometheus.Gauge
	Goroutines       prometheus.Gauge
	StorageUsedBytes prometheus.Gauge

	registry *prometheus.Registry
}

// New creates a new Metrics instance with all metrics registered
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		SessionsActive: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "planry_sessions_active",
				Help: "Number of planning sessions held in memory",
			},
		),
		SessionsCreatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "planry_sessions_created_total",
				Help: "Total number of planning sessions created",
			},
		),
		SessionsExpiredTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "planry_sessions_expired_total",
				Help: "Total number of idle sessions removed by the sweeper",
			},
		),

		PlanMutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planry_plan_mutations_total",
				Help: "Total number of applied campaign and schedule mutations",
			},
			[]string{"operation"},
		),
		PlanErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planry_plan_errors_total",
				Help: "Total number of rejected campaign and schedule mutations",
			},
			[]string{"operation", "reason"},
		),

		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planry_exports_total",
				Help: "Total number of rendered checklist exports",
			},
			[]string{"format"},
		),
		ArchiveEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "planry_archive_entries",
				Help: "Number of checklists stored in the export archive",
			},
		),

		APIRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planry_api_requests_total",
				Help: "Total number of API requests",
			},
			[]string{"method", "path", "status"},
		),
		APIRequestDurationSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "planry_api_request_duration_seconds",
				Help:    "API request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "path"},
		),
		APIErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planry_api_errors_total",
				Help: "Total number of API errors",
			},
			[]string{"error_type"},
		),
		APIRateLimitedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "planry_api_rate_limited_total",
				Help: "Total number of API requests rejected by the rate limiter",
			},
			[]string{"level"},
		),

		UptimeSeconds: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "planry_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
		Goroutines: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "planry_goroutines",
				Help: "Number of active goroutines",
			},
		),
		StorageUsedBytes: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "planry_storage_used_bytes",
				Help: "Archive database file size in bytes",
			},
		),

		registry: reg,
	}

	reg.MustRegister(
		m.SessionsActive,
		m.SessionsCreatedTotal,
		m.SessionsExpiredTotal,
		m.PlanMutationsTotal,
		m.PlanErrorsTotal,
		m.ExportsTotal,
		m.ArchiveEntries,
		m.APIRequestsTotal,
		m.APIRequestDurationSeconds,
		m.APIErrorsTotal,
		m.APIRateLimitedTotal,
		m.UptimeSeconds,
		m.Goroutines,
		m.StorageUsedBytes,
	)

	return m
}

// Registry returns the Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// SetGlobal sets the global metrics instance
func SetGlobal(m *Metrics) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalMetrics = m
}

// Global returns the global metrics instance
func Global() *Metrics {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return globalMetrics
}

// IncSessionsCreated counts a new session
func IncSessionsCreated() {
	if m := Global(); m != nil {
		m.SessionsCreatedTotal.Inc()
	}
}

// IncSessionsExpired counts sessions dropped by the sweeper
func IncSessionsExpired(n int) {
	if m := Global(); m != nil {
		m.SessionsExpiredTotal.Add(float64(n))
	}
}

// SetSessionsActive records the number of live sessions
func SetSessionsActive(n int) {
	if m := Global(); m != nil {
		m.SessionsActive.Set(float64(n))
	}
}

// IncPlanMutation counts an applied mutation
func IncPlanMutation(operation string) {
	if m := Global(); m != nil {
		m.PlanMutationsTotal.WithLabelValues(operation).Inc()
	}
}

// IncPlanError counts a rejected mutation
func IncPlanError(operation, reason string) {
	if m := Global(); m != nil {
		m.PlanErrorsTotal.WithLabelValues(operation, reason).Inc()
	}
}

// IncExports counts a rendered checklist
func IncExports(format string) {
	if m := Global(); m != nil {
		m.ExportsTotal.WithLabelValues(format).Inc()
	}
}

// SetArchiveEntries records the archive size
func SetArchiveEntries(n int) {
	if m := Global(); m != nil {
		m.ArchiveEntries.Set(float64(n))
	}
}

// IncRateLimited counts a request rejected by the rate limiter
func IncRateLimited(level string) {
	if m := Global(); m != nil {
		m.APIRateLimitedTotal.WithLabelValues(level).Inc()
	}
}
