// Package metrics holds the Prometheus instrumentation of the telemetry
// pipeline and an optional HTTP server exposing it.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "sbcpad"

// Translation results.
const (
	ResultApplied = "applied"
	ResultSkipped = "skipped"
)

// Metrics contains the pipeline metrics. A nil *Metrics is valid and records
// nothing.
type Metrics struct {
	registry *prometheus.Registry

	Lines        prometheus.Counter
	Events       *prometheus.CounterVec
	DecodeErrors *prometheus.CounterVec
	Translations *prometheus.CounterVec
	Connected    prometheus.Gauge
}

// New creates the metrics and registers them on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Lines: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lines_total",
			Help:      "Total number of non-empty telemetry lines received",
		}),
		Events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Total number of decoded events by type",
		}, []string{"type"}),
		DecodeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Total number of lines that failed to decode",
		}, []string{"reason"}),
		Translations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "translations_total",
			Help:      "Total number of raw_state events by outcome (applied, skipped)",
		}, []string{"result"}),
		Connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "connected",
			Help:      "1 while connected to the telemetry publisher",
		}),
	}
	m.registry.MustRegister(m.Lines, m.Events, m.DecodeErrors, m.Translations, m.Connected)
	return m
}

// Registry returns the registry the metrics are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Line() {
	if m == nil {
		return
	}
	m.Lines.Inc()
}

func (m *Metrics) Event(typ string) {
	if m == nil {
		return
	}
	m.Events.WithLabelValues(typ).Inc()
}

func (m *Metrics) DecodeError(reason string) {
	if m == nil {
		return
	}
	m.DecodeErrors.WithLabelValues(reason).Inc()
}

func (m *Metrics) Translation(applied bool) {
	if m == nil {
		return
	}
	result := ResultSkipped
	if applied {
		result = ResultApplied
	}
	m.Translations.WithLabelValues(result).Inc()
}

func (m *Metrics) SetConnected(connected bool) {
	if m == nil {
		return
	}
	if connected {
		m.Connected.Set(1)
	} else {
		m.Connected.Set(0)
	}
}
