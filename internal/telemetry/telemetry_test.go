// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestStreamStats(t *testing.T) {
	s := NewStreamStats()
	s.StartTime = time.Now().Add(-2 * time.Second)

	assert.Zero(t, s.TTFT(), "no token yet")

	s.RecordToken(2)
	s.RecordToken(3)
	s.Finish()

	assert.Equal(t, 2, s.Increments)
	assert.Equal(t, 5, s.Chars)
	assert.True(t, s.TTFT() > 0)
	assert.True(t, s.Duration() >= 2*time.Second)

	end := s.EndTime
	s.Finish()
	assert.Equal(t, end, s.EndTime, "Finish is idempotent")
}

func TestStreamStats_TokensPerSecond(t *testing.T) {
	s := &StreamStats{OutputTokens: 10, EvalDuration: 2 * time.Second}
	assert.Equal(t, 5.0, s.TokensPerSecond())

	start := time.Now()
	s = &StreamStats{StartTime: start, EndTime: start.Add(4 * time.Second), Increments: 8}
	assert.Equal(t, 2.0, s.TokensPerSecond())
	assert.Contains(t, s.Format(), "8 tokens")
}

func TestMetrics_Counters(t *testing.T) {
	m := NewMetrics()

	m.TurnStarted()
	m.TokenDelivered()
	m.TokenDelivered()
	m.TurnCompleted(NewStreamStats())

	m.TurnStarted()
	m.TurnFailed("StreamTruncated")

	m.TurnStarted()
	m.TurnCanceled()

	m.TurnRejected()
	m.RegistryLookup(false)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues(OutcomeCompleted)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues(OutcomeFailed)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues(OutcomeCanceled)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.turnsTotal.WithLabelValues(OutcomeRejected)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failuresTotal.WithLabelValues("StreamTruncated")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.tokensTotal))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.inflight))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registryLookups.WithLabelValues("unavailable")))
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.TurnStarted()
		m.TurnRejected()
		m.TokenDelivered()
		m.TurnCompleted(nil)
		m.TurnFailed("x")
		m.TurnCanceled()
		m.RegistryLookup(true)
	})
}

func TestMetrics_Handler(t *testing.T) {
	m := NewMetrics()
	m.TurnRejected()

	rr := httptest.NewRecorder()
	m.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.True(t, strings.Contains(rr.Body.String(), "ollama_chat_session_turns_total"))
}
