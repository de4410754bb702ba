// Package metrics provides prometheus instrumentation for the
// inter-service client: request counts and latency, retry volume, and
// envelope failures.
package metrics

import (
	"regexp"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics owns a private registry with the client's collectors.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal    *prometheus.CounterVec
	requestDuration  *prometheus.HistogramVec
	retriesTotal     prometheus.Counter
	envelopeFailures *prometheus.CounterVec
}

// New creates a Metrics instance with its own registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intersvc",
			Name:      "requests_total",
			Help:      "Completed inter-service requests by method and status code.",
		}, []string{"method", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "intersvc",
			Name:      "request_duration_seconds",
			Help:      "Inter-service request latency, including retries.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		retriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "intersvc",
			Name:      "retries_total",
			Help:      "Individual retry attempts across all requests.",
		}),
		envelopeFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "intersvc",
			Name:      "envelope_failures_total",
			Help:      "Envelope seal/open failures by operation.",
		}, []string{"op"}),
	}

	m.registry.MustRegister(
		m.requestsTotal,
		m.requestDuration,
		m.retriesTotal,
		m.envelopeFailures,
	)

	return m
}

// WithGoCollectorRuntimeMetrics registers the Go runtime collectors.
func (m *Metrics) WithGoCollectorRuntimeMetrics() {
	m.registry.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorRuntimeMetrics(collectors.GoRuntimeMetricsRule{Matcher: regexp.MustCompile("/.*")}),
	))
}

// WithBuildInfoCollector registers the build info collector.
func (m *Metrics) WithBuildInfoCollector() {
	m.registry.MustRegister(collectors.NewBuildInfoCollector())
}

// Registry returns the underlying registry for exposition.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveRequest records one completed logical request. All observers are
// nil-safe so the client can run without metrics.
func (m *Metrics) ObserveRequest(method string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(method, strconv.Itoa(statusCode)).Inc()
	m.requestDuration.WithLabelValues(method).Observe(duration.Seconds())
}

// ObserveRetry records one retry attempt.
func (m *Metrics) ObserveRetry() {
	if m == nil {
		return
	}
	m.retriesTotal.Inc()
}

// ObserveEnvelopeFailure records a seal or open failure.
func (m *Metrics) ObserveEnvelopeFailure(op string) {
	if m == nil {
		return
	}
	m.envelopeFailures.WithLabelValues(op).Inc()
}
