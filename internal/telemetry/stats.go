// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package telemetry

import (
	"fmt"
	"time"
)

// =============================================================================
// STREAM STATS
// =============================================================================

// StreamStats holds statistics collected while one turn streams.
// It is not safe for concurrent use.
type StreamStats struct {
	StartTime      time.Time
	FirstTokenTime time.Time
	EndTime        time.Time

	// Increments counts decoded stream increments, not model tokens.
	Increments int
	Chars      int

	// Reported by the server on the final chunk, zero if absent.
	PromptTokens int
	OutputTokens int
	EvalDuration time.Duration
}

// NewStreamStats creates a new StreamStats with start time set.
func NewStreamStats() *StreamStats {
	return &StreamStats{StartTime: time.Now()}
}

// RecordToken notes the arrival of one increment of n bytes.
func (s *StreamStats) RecordToken(n int) {
	if s.FirstTokenTime.IsZero() {
		s.FirstTokenTime = time.Now()
	}
	s.Increments++
	s.Chars += n
}

// Finish stamps the end time.
func (s *StreamStats) Finish() {
	if s.EndTime.IsZero() {
		s.EndTime = time.Now()
	}
}

// TTFT returns the time to first token, or zero if none arrived.
func (s *StreamStats) TTFT() time.Duration {
	if s.FirstTokenTime.IsZero() {
		return 0
	}
	return s.FirstTokenTime.Sub(s.StartTime)
}

// Duration returns the wall time of the turn.
func (s *StreamStats) Duration() time.Duration {
	end := s.EndTime
	if end.IsZero() {
		end = time.Now()
	}
	return end.Sub(s.StartTime)
}

// TokensPerSecond prefers the server's own counters and falls back to the
// increment rate seen by the client.
func (s *StreamStats) TokensPerSecond() float64 {
	if s.OutputTokens > 0 && s.EvalDuration > 0 {
		return float64(s.OutputTokens) / s.EvalDuration.Seconds()
	}
	d := s.Duration()
	if d <= 0 {
		return 0
	}
	return float64(s.Increments) / d.Seconds()
}

// Format returns a one-line summary for status bars.
func (s *StreamStats) Format() string {
	tokens := s.OutputTokens
	if tokens == 0 {
		tokens = s.Increments
	}
	return fmt.Sprintf("%.1fs | %d tokens | %.1f tok/s | TTFT %dms",
		s.Duration().Seconds(), tokens, s.TokensPerSecond(), s.TTFT().Milliseconds())
}
