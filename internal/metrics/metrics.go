// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login outcomes.
const (
	OutcomeSuccess  = "success"
	OutcomeInvalid  = "invalid_credentials"
	OutcomeInactive = "inactive"
	OutcomeError    = "error"
)

type Metrics struct {
	registry *prometheus.Registry

	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	Registrations   *prometheus.CounterVec
	Logins          *prometheus.CounterVec
	ChildrenCreated prometheus.Counter
}

// New creates a private registry with Go/process collectors and the
// application metrics.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{
		registry: reg,
		RequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyberkids_http_requests_total",
				Help: "Total number of HTTP requests by route, method and status",
			},
			[]string{"route", "method", "status"},
		),
		RequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cyberkids_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route", "method"},
		),
		Registrations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyberkids_registrations_total",
				Help: "Accounts registered by role",
			},
			[]string{"role"},
		),
		Logins: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cyberkids_logins_total",
				Help: "Login attempts by outcome",
			},
			[]string{"outcome"},
		),
		ChildrenCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cyberkids_children_created_total",
				Help: "Child accounts created by parents",
			},
		),
	}

	reg.MustRegister(m.RequestsTotal, m.RequestDuration, m.Registrations, m.Logins, m.ChildrenCreated)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// The Record* helpers are safe on a nil *Metrics so callers need no guard.

func (m *Metrics) RecordRequest(route, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(route, method, status).Inc()
	m.RequestDuration.WithLabelValues(route, method).Observe(d.Seconds())
}

func (m *Metrics) RecordRegistration(role string) {
	if m == nil {
		return
	}
	m.Registrations.WithLabelValues(role).Inc()
}

func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordChildCreated() {
	if m == nil {
		return
	}
	m.ChildrenCreated.Inc()
}
