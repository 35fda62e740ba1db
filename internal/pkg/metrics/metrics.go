package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics exposes Prometheus instruments for the HTTP API and the organization store.
type Metrics struct {
	registry        *prometheus.Registry
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
	tableActions    *prometheus.CounterVec
	loginAttempts   *prometheus.CounterVec
	rateLimitedHits prometheus.Counter
}

// New registers the orghub instruments plus the Go and process collectors on a fresh registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orghub_http_requests_total",
			Help: "Counts HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "orghub_http_request_duration_seconds",
			Help:    "HTTP request latency by method and route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		tableActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orghub_table_actions_total",
			Help: "Members and applicants table actions by action and outcome.",
		}, []string{"action", "outcome"}),
		loginAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "orghub_login_attempts_total",
			Help: "Login attempts by outcome.",
		}, []string{"outcome"}),
		rateLimitedHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "orghub_rate_limited_requests_total",
			Help: "Requests rejected by the login rate limiter.",
		}),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.tableActions,
		m.loginAttempts,
		m.rateLimitedHits,
	)
	return m
}

// ObserveRequest records one finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// TableAction records a members or applicants table action. Outcome is "applied",
// "stale" or "error".
func (m *Metrics) TableAction(action, outcome string) {
	if m == nil {
		return
	}
	m.tableActions.WithLabelValues(action, outcome).Inc()
}

// LoginAttempt records a login outcome, "success" or "failure"
func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.loginAttempts.WithLabelValues(outcome).Inc()
}

// RateLimited records a request rejected by the rate limiter
func (m *Metrics) RateLimited() {
	if m == nil {
		return
	}
	m.rateLimitedHits.Inc()
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
