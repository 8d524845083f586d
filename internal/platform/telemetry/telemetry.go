package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dog_registration"

// Resultados posibles del envío remoto de un evento.
const (
	DispatchDelivered = "delivered"
	DispatchFailed    = "failed"
	DispatchDropped   = "dropped"
)

// Metrics agrupa los contadores del servicio. Usa un registry propio
// (no el global) para que cada test pueda construir el suyo.
type Metrics struct {
	registry *prometheus.Registry

	EventsTracked  *prometheus.CounterVec
	EventsDispatch *prometheus.CounterVec
	FormSessions   prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		EventsTracked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_tracked_total",
			Help:      "Tracking events appended to the in-memory log, by event type.",
		}, []string{"type"}),
		EventsDispatch: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_dispatch_total",
			Help:      "Remote analytics dispatch outcomes.",
		}, []string{"result"}),
		FormSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "form_sessions_open",
			Help:      "Registration form sessions currently open.",
		}),
	}

	reg.MustRegister(
		m.EventsTracked,
		m.EventsDispatch,
		m.FormSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Handler expone /metrics con el registry propio.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Los helpers aceptan receptor nil para que el dominio no tenga que chequear.

func (m *Metrics) ObserveTracked(eventType string) {
	if m == nil {
		return
	}
	m.EventsTracked.WithLabelValues(eventType).Inc()
}

func (m *Metrics) ObserveDispatch(result string) {
	if m == nil {
		return
	}
	m.EventsDispatch.WithLabelValues(result).Inc()
}

func (m *Metrics) SessionOpened() {
	if m == nil {
		return
	}
	m.FormSessions.Inc()
}

func (m *Metrics) SessionClosed() {
	if m == nil {
		return
	}
	m.FormSessions.Dec()
}
