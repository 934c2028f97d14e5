// Package metrics exposes Prometheus collectors for the enrichment
// pipeline and the HTTP API.
package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	initOnce sync.Once

	domainsTotal   *prometheus.CounterVec
	livenessTotal  *prometheus.CounterVec
	contactsTotal  *prometheus.CounterVec
	errorRowsTotal prometheus.Counter
	stageUnits     *prometheus.CounterVec

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
)

// Init registers all collectors. Safe to call more than once.
func Init() {
	initOnce.Do(func() {
		domainsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_domains_total",
			Help: "Domains processed, by classification.",
		}, []string{"class"})

		livenessTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_liveness_total",
			Help: "Liveness verdicts, by final status.",
		}, []string{"status"})

		contactsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_contacts_total",
			Help: "Contacts extracted, by kind.",
		}, []string{"kind"})

		errorRowsTotal = promauto.NewCounter(prometheus.CounterOpts{
			Name: "enricher_error_rows_total",
			Help: "Rows that ended with the error sentinel.",
		})

		stageUnits = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "enricher_stage_units_total",
			Help: "Units of work completed, by pipeline stage.",
		}, []string{"stage"})

		httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP requests served.",
		}, []string{"method", "code"})

		httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5},
		}, []string{"method", "route"})
	})
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveDomain records a classified domain.
func ObserveDomain(class string) {
	if domainsTotal != nil {
		domainsTotal.WithLabelValues(class).Inc()
	}
}

// ObserveLiveness records a final liveness verdict.
func ObserveLiveness(status string) {
	if livenessTotal != nil {
		livenessTotal.WithLabelValues(status).Inc()
	}
}

// ObserveContacts records extracted contact counts by kind
// ("email" or "phone").
func ObserveContacts(kind string, count int) {
	if contactsTotal != nil && count > 0 {
		contactsTotal.WithLabelValues(kind).Add(float64(count))
	}
}

// ObserveErrorRow records a row that ended with the error sentinel.
func ObserveErrorRow() {
	if errorRowsTotal != nil {
		errorRowsTotal.Inc()
	}
}

// ObserveStageUnit records one completed unit of work for a stage.
func ObserveStageUnit(stage string) {
	if stageUnits != nil {
		stageUnits.WithLabelValues(stage).Inc()
	}
}

// ObserveHTTPRequest records a served HTTP request.
func ObserveHTTPRequest(method, route string, code int, duration time.Duration) {
	if httpRequestsTotal != nil {
		httpRequestsTotal.WithLabelValues(method, strconv.Itoa(code)).Inc()
	}
	if httpRequestDuration != nil {
		httpRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
	}
}
