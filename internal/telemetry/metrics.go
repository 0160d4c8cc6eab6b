// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "ollama_chat"

// Turn outcomes used as label values.
const (
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
	OutcomeCanceled  = "canceled"
	OutcomeRejected  = "rejected"
)

// =============================================================================
// METRICS
// =============================================================================

// Metrics holds the Prometheus collectors for one process. Each instance
// owns its registry so tests can create as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	turnsTotal      *prometheus.CounterVec
	failuresTotal   *prometheus.CounterVec
	tokensTotal     prometheus.Counter
	inflight        prometheus.Gauge
	ttft            prometheus.Histogram
	turnDuration    prometheus.Histogram
	registryLookups *prometheus.CounterVec
}

// NewMetrics creates and registers all collectors.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		turnsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "turns_total",
				Help:      "Submitted turns by outcome",
			},
			[]string{"outcome"},
		),
		failuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "failures_total",
				Help:      "Failed turns by error kind",
			},
			[]string{"kind"},
		),
		tokensTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "increments_total",
				Help:      "Stream increments delivered to the consumer",
			},
		),
		inflight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "session",
				Name:      "inflight_requests",
				Help:      "Generation requests currently in flight",
			},
		),
		ttft: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "time_to_first_token_seconds",
				Help:      "Latency from submit to first increment",
				Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
			},
		),
		turnDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "stream",
				Name:      "turn_duration_seconds",
				Help:      "Wall time of completed turns",
				Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10),
			},
		),
		registryLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "registry",
				Name:      "lookups_total",
				Help:      "Model listing attempts by result",
			},
			[]string{"result"},
		),
	}

	m.registry.MustRegister(
		m.turnsTotal,
		m.failuresTotal,
		m.tokensTotal,
		m.inflight,
		m.ttft,
		m.turnDuration,
		m.registryLookups,
		collectors.NewGoCollector(),
	)
	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns an http.Handler serving the metrics in text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TurnStarted records an accepted submit.
func (m *Metrics) TurnStarted() {
	if m == nil {
		return
	}
	m.inflight.Inc()
}

// TurnRejected records a submit that was refused.
func (m *Metrics) TurnRejected() {
	if m == nil {
		return
	}
	m.turnsTotal.WithLabelValues(OutcomeRejected).Inc()
}

// TokenDelivered records one increment handed to the consumer.
func (m *Metrics) TokenDelivered() {
	if m == nil {
		return
	}
	m.tokensTotal.Inc()
}

// TurnCompleted records a successful turn.
func (m *Metrics) TurnCompleted(s *StreamStats) {
	if m == nil {
		return
	}
	m.inflight.Dec()
	m.turnsTotal.WithLabelValues(OutcomeCompleted).Inc()
	if s != nil {
		if ttft := s.TTFT(); ttft > 0 {
			m.ttft.Observe(ttft.Seconds())
		}
		m.turnDuration.Observe(s.Duration().Seconds())
	}
}

// TurnFailed records a failed turn with its error kind.
func (m *Metrics) TurnFailed(kind string) {
	if m == nil {
		return
	}
	m.inflight.Dec()
	m.turnsTotal.WithLabelValues(OutcomeFailed).Inc()
	m.failuresTotal.WithLabelValues(kind).Inc()
}

// TurnCanceled records a turn aborted by the consumer.
func (m *Metrics) TurnCanceled() {
	if m == nil {
		return
	}
	m.inflight.Dec()
	m.turnsTotal.WithLabelValues(OutcomeCanceled).Inc()
}

// RegistryLookup records a model listing attempt.
func (m *Metrics) RegistryLookup(ok bool) {
	if m == nil {
		return
	}
	result := "ok"
	if !ok {
		result = "unavailable"
	}
	m.registryLookups.WithLabelValues(result).Inc()
}
