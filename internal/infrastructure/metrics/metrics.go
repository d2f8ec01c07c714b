// Package metrics exposes Prometheus instruments for the free-issue workflow and the HTTP layer.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/distro/backoffice/internal/infrastructure/config"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// DefaultNamespace prefixes every metric when the config leaves it empty
const DefaultNamespace = "backoffice"

// HTTPDurationBuckets are the latency buckets for HTTP requests, in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Metrics owns a private Prometheus registry and every instrument the service records.
//
// Thread Safety: Safe for concurrent use by multiple goroutines.
type Metrics struct {
	registry *prometheus.Registry

	billsReceived   *prometheus.CounterVec
	linesReceived   *prometheus.CounterVec
	unitsReceived   *prometheus.CounterVec
	claimsApproved  *prometheus.CounterVec
	itemsClaimed    *prometheus.CounterVec
	lockContentions prometheus.Counter

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	httpActiveRequests prometheus.Gauge
}

// New creates the instruments and registers them together with the Go runtime
// and process collectors.
func New(cfg config.MetricsConfig) *Metrics {
	ns := cfg.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		billsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "free_issue",
			Name:      "bills_received_total",
			Help:      "Free-issue bills fully processed.",
		}, []string{"business_id"}),
		linesReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "free_issue",
			Name:      "lines_received_total",
			Help:      "Free-issue bill lines processed.",
		}, []string{"business_id"}),
		unitsReceived: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "free_issue",
			Name:      "units_received_total",
			Help:      "Free units received into stock.",
		}, []string{"business_id"}),
		claimsApproved: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "free_issue",
			Name:      "claims_approved_total",
			Help:      "Supplier claim batches created.",
		}, []string{"business_id"}),
		itemsClaimed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "free_issue",
			Name:      "order_items_claimed_total",
			Help:      "Order items closed under a claim batch.",
		}, []string{"business_id"}),
		lockContentions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "free_issue",
			Name:      "lock_contentions_total",
			Help:      "Requests rejected because the processing lock was held.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status code.",
		}, []string{"method", "route", "status_code"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "route"}),
		httpActiveRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: ns,
			Subsystem: "http",
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
	}

	m.registry.MustRegister(
		m.billsReceived,
		m.linesReceived,
		m.unitsReceived,
		m.claimsApproved,
		m.itemsClaimed,
		m.lockContentions,
		m.httpRequests,
		m.httpDuration,
		m.httpActiveRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterDBStats exports connection pool statistics for db
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// Handler returns the scrape handler for this registry
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Gather returns the current metric families
func (m *Metrics) Gather() ([]*dto.MetricFamily, error) {
	return m.registry.Gather()
}

// RecordFreeIssue counts one processed bill
func (m *Metrics) RecordFreeIssue(businessID string, lines int, units float64) {
	m.billsReceived.WithLabelValues(businessID).Inc()
	m.linesReceived.WithLabelValues(businessID).Add(float64(lines))
	if units > 0 {
		m.unitsReceived.WithLabelValues(businessID).Add(units)
	}
}

// RecordClaim counts one claim batch and the order items it closed
func (m *Metrics) RecordClaim(businessID string, items int) {
	m.claimsApproved.WithLabelValues(businessID).Inc()
	m.itemsClaimed.WithLabelValues(businessID).Add(float64(items))
}

// RecordLockContention counts a request turned away by the processing lock
func (m *Metrics) RecordLockContention() {
	m.lockContentions.Inc()
}

// RequestStarted marks one more in-flight HTTP request
func (m *Metrics) RequestStarted() {
	m.httpActiveRequests.Inc()
}

// ObserveRequest records a finished HTTP request
func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	m.httpActiveRequests.Dec()
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}
