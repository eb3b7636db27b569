// Package metrics holds the relay's Prometheus collectors.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics implements ports.OutcomeRecorder and exposes the HTTP latency
// histogram for the metrics middleware.
type Metrics struct {
	callbacks     *prometheus.CounterVec
	notifications *prometheus.CounterVec
	httpLatency   *prometheus.HistogramVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		callbacks: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipn_callbacks_total",
				Help: "IPN callbacks by outcome.",
			},
			[]string{"outcome"}, // credit|fail|ignore|not_found|invalid_signature|...
		),
		notifications: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ipn_notifications_total",
				Help: "Chat notifications by delivery result.",
			},
			[]string{"result"},
		),
		httpLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Latency of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
	}

	reg.MustRegister(m.callbacks, m.notifications, m.httpLatency)
	return m
}

// RecordCallback counts one reconciled or rejected callback.
func (m *Metrics) RecordCallback(outcome string) {
	m.callbacks.WithLabelValues(outcome).Inc()
}

// RecordDelivery counts one notification attempt.
func (m *Metrics) RecordDelivery(result string) {
	m.notifications.WithLabelValues(result).Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(method, route, status string, seconds float64) {
	m.httpLatency.WithLabelValues(method, route, status).Observe(seconds)
}

// Handler serves the registry in the Prometheus exposition format.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
