// Package metrics holds the Prometheus collectors exported on /metrics.
// All methods are safe on a nil *Metrics so tests can pass nil.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry             *prometheus.Registry
	authFailures         *prometheus.CounterVec
	facultyRegistrations *prometheus.CounterVec
	facultyIDRetries     prometheus.Counter
	duplicateRejections  *prometheus.CounterVec
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "auth_failures_total",
			Help:      "Rejected requests by reason.",
		}, []string{"reason"}),
		facultyRegistrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "faculty_registrations_total",
			Help:      "Faculty registrations by outcome.",
		}, []string{"outcome"}),
		facultyIDRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "faculty_id_retries_total",
			Help:      "Faculty registrations retried after a generated id collided.",
		}),
		duplicateRejections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "sms",
			Name:      "duplicate_rejections_total",
			Help:      "Writes rejected by a uniqueness check, by entity.",
		}, []string{"entity"}),
	}
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.authFailures,
		m.facultyRegistrations,
		m.facultyIDRetries,
		m.duplicateRejections,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) AuthFailed(reason string) {
	if m == nil {
		return
	}
	m.authFailures.WithLabelValues(reason).Inc()
}

func (m *Metrics) FacultyRegistered(outcome string) {
	if m == nil {
		return
	}
	m.facultyRegistrations.WithLabelValues(outcome).Inc()
}

func (m *Metrics) FacultyIDRetried() {
	if m == nil {
		return
	}
	m.facultyIDRetries.Inc()
}

func (m *Metrics) DuplicateRejected(entity string) {
	if m == nil {
		return
	}
	m.duplicateRejections.WithLabelValues(entity).Inc()
}
