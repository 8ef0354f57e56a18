// Package metrics exposes Prometheus collectors for mutations, cache
// invalidations and HTTP traffic.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds every collector of the service.
type Metrics struct {
	mutationsTotal   *prometheus.CounterVec
	mutationDuration *prometheus.HistogramVec

	invalidationsTotal *prometheus.CounterVec

	httpInFlight        prometheus.Gauge
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg.
// A nil reg uses the default registry.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &Metrics{
		mutationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthops",
				Name:      "mutations_total",
				Help:      "Audited mutations by entity, operation and outcome.",
			},
			[]string{"entity", "operation", "outcome"},
		),
		mutationDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "healthops",
				Name:      "mutation_duration_seconds",
				Help:      "Audited mutation latency in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"entity", "operation"},
		),
		invalidationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthops",
				Name:      "cache_invalidations_total",
				Help:      "Cache invalidations by sink, key kind and outcome.",
			},
			[]string{"sink", "kind", "outcome"},
		),
		httpInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "healthops",
			Name:      "http_in_flight_requests",
			Help:      "In-flight HTTP requests.",
		}),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "healthops",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests.",
			},
			[]string{"method", "route", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "healthops",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latencies in seconds.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(
		m.mutationsTotal, m.mutationDuration,
		m.invalidationsTotal,
		m.httpInFlight, m.httpRequestsTotal, m.httpRequestDuration,
	)

	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	} else {
		m.gatherer = prometheus.DefaultGatherer
	}
	return m
}

// ObserveMutation implements domain.MutationObserver.
func (m *Metrics) ObserveMutation(entity, operation, outcome string, elapsed time.Duration) {
	m.mutationsTotal.WithLabelValues(entity, operation, outcome).Inc()
	m.mutationDuration.WithLabelValues(entity, operation).Observe(elapsed.Seconds())
}

// ObserveInvalidation counts one invalidation attempt against a sink.
func (m *Metrics) ObserveInvalidation(sink, kind string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.invalidationsTotal.WithLabelValues(sink, kind, outcome).Inc()
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// GinMiddleware records request count, latency and in-flight requests.
// Requests are labelled by route template, so /payers/:pubId stays one series.
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		m.httpInFlight.Inc()
		start := time.Now()

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := strconv.Itoa(c.Writer.Status())
		m.httpRequestDuration.WithLabelValues(c.Request.Method, route, status).Observe(time.Since(start).Seconds())
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, route, status).Inc()
		m.httpInFlight.Dec()
	}
}
