// internal/app/system/metrics/metrics.go
package metrics

import (
	"net/http"

	"github.com/dalemusser/taskhub/internal/domain/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the application's Prometheus collectors. A nil *Metrics is
// valid and records nothing, so components can be built without metrics in
// tests.
type Metrics struct {
	reg *prometheus.Registry

	notifications *prometheus.CounterVec
	transitions   *prometheus.CounterVec
	denials       *prometheus.CounterVec
	requests      *prometheus.CounterVec
}

// New creates a registry with Go and process collectors plus the
// application counters.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	m := &Metrics{
		reg: reg,
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskhub",
			Name:      "notifications_created_total",
			Help:      "Notifications created, by type.",
		}, []string{"type"}),
		transitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskhub",
			Name:      "task_status_transitions_total",
			Help:      "Accepted task status changes, by source and target status.",
		}, []string{"from", "to"}),
		denials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskhub",
			Name:      "access_denials_total",
			Help:      "Authorization denials, by action and reason.",
		}, []string{"action", "reason"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "taskhub",
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status class.",
		}, []string{"method", "class"}),
	}
	reg.MustRegister(m.notifications, m.transitions, m.denials, m.requests)
	return m
}

// NotificationCreated counts one notification of type t.
func (m *Metrics) NotificationCreated(t models.NotificationType) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(string(t)).Inc()
}

// StatusTransition counts an accepted status change.
func (m *Metrics) StatusTransition(from, to models.TaskStatus) {
	if m == nil {
		return
	}
	m.transitions.WithLabelValues(string(from), string(to)).Inc()
}

// AccessDenied counts a denied authorization.
func (m *Metrics) AccessDenied(action, reason string) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(action, reason).Inc()
}

// Request counts a served HTTP request.
func (m *Metrics) Request(method string, status int) {
	if m == nil {
		return
	}
	class := "5xx"
	switch {
	case status < 200:
		class = "1xx"
	case status < 300:
		class = "2xx"
	case status < 400:
		class = "3xx"
	case status < 500:
		class = "4xx"
	}
	m.requests.WithLabelValues(method, class).Inc()
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
