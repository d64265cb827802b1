// Package metrics exposes prometheus collectors for assessment runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Assessment outcome labels.
const (
	OutcomeAssessed = "assessed"
	OutcomeCached   = "cached"
	OutcomeRejected = "rejected"
	OutcomeConflict = "conflict"
	OutcomeError    = "error"
)

// Metrics owns a private registry so tests can build as many as they need.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	assessments     *prometheus.CounterVec
	awardsEligible  *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	requestDuration *prometheus.HistogramVec
	cacheLookups    *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	assessments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "assessments_total",
		Help: "Assessment runs by offering intensity and outcome",
	}, []string{"intensity", "outcome"})

	awardsEligible := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "award_eligible_total",
		Help: "Assessment runs in which the award was eligible",
	}, []string{"award"})

	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "assessment_duration_seconds",
		Help:    "Duration of the assessment pipeline",
		Buckets: prometheus.DefBuckets,
	}, []string{"intensity"})

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	cacheLookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "result_cache_lookups_total",
		Help: "Result cache lookups by outcome",
	}, []string{"result"})

	registry.MustRegister(assessments, awardsEligible, duration, requestDuration, cacheLookups,
		collectors.NewGoCollector())

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		assessments:     assessments,
		awardsEligible:  awardsEligible,
		duration:        duration,
		requestDuration: requestDuration,
		cacheLookups:    cacheLookups,
	}
}

// Handler exposes the prometheus HTTP handler.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// ObserveAssessment records one pipeline run. eligible lists the award codes
// that came out eligible; pass nil for runs that did not complete.
func (m *Metrics) ObserveAssessment(intensity, outcome string, eligible []string, d time.Duration) {
	if m == nil {
		return
	}
	m.assessments.WithLabelValues(intensity, outcome).Inc()
	if outcome == OutcomeAssessed {
		m.duration.WithLabelValues(intensity).Observe(d.Seconds())
	}
	for _, code := range eligible {
		m.awardsEligible.WithLabelValues(code).Inc()
	}
}

func (m *Metrics) ObserveCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	m.cacheLookups.WithLabelValues("miss").Inc()
}

func (m *Metrics) ObserveHTTPRequest(method, route string, d time.Duration) {
	if m == nil {
		return
	}
	m.requestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
