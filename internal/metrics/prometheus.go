package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Manager owns the Prometheus collectors. A nil *Manager is valid and
// records nothing.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	jobsRecorded     *prometheus.CounterVec
	levelChanges     *prometheus.CounterVec
	recalculations   *prometheus.CounterVec
	analyticsQueries *prometheus.CounterVec
	cacheLookups     *prometheus.CounterVec
	publishFailures  prometheus.Counter
	spendingFailures prometheus.Counter

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager on a fresh registry unless one is supplied.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "kaamgarau",
		histogramBuckets: prometheus.DefBuckets,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.jobsRecorded = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "jobs_recorded_total",
		Help:      "Jobs recorded, by role",
	}, []string{"role"})

	m.levelChanges = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "level_changes_total",
		Help:      "Level changes observed during recalculation, by role and direction",
	}, []string{"role", "direction"})

	m.recalculations = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "level_recalculations_total",
		Help:      "Level recalculations, by outcome",
	}, []string{"outcome"})

	m.analyticsQueries = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "analytics_queries_total",
		Help:      "Analytics aggregations served, by range and view",
	}, []string{"range", "view"})

	m.cacheLookups = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "cache_lookups_total",
		Help:      "Dashboard cache lookups, by result",
	}, []string{"result"})

	m.publishFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recalc_publish_failures_total",
		Help:      "Recalculation messages that could not be published",
	})

	m.spendingFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "posted_job_spending_failures_total",
		Help:      "Posted jobs whose spending event could not be recorded",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests, by method, route and status code",
	}, []string{"method", "route", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   m.histogramBuckets,
	}, []string{"method", "route"})
}

func (m *Manager) JobRecorded(role string) {
	if m == nil {
		return
	}
	m.jobsRecorded.WithLabelValues(role).Inc()
}

// LevelChanged counts a transition; equal levels are ignored.
func (m *Manager) LevelChanged(role string, from, to int) {
	if m == nil || from == to {
		return
	}
	direction := "up"
	if to < from {
		direction = "down"
	}
	m.levelChanges.WithLabelValues(role, direction).Inc()
}

// Recalculated counts a finished recalculation; outcome is "changed",
// "unchanged" or "error".
func (m *Manager) Recalculated(outcome string) {
	if m == nil {
		return
	}
	m.recalculations.WithLabelValues(outcome).Inc()
}

func (m *Manager) AnalyticsServed(timeRange, view string) {
	if m == nil {
		return
	}
	m.analyticsQueries.WithLabelValues(timeRange, view).Inc()
}

func (m *Manager) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}

func (m *Manager) PublishFailed() {
	if m == nil {
		return
	}
	m.publishFailures.Inc()
}

func (m *Manager) SpendingFailed() {
	if m == nil {
		return
	}
	m.spendingFailures.Inc()
}

func (m *Manager) ObserveHTTP(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// Registry returns the registry backing this manager.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Manager) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
