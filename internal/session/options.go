// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/LAGkitty/ollama-GUI/internal/telemetry"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	// DefaultSystemPrompt is sent as the system message of every request.
	DefaultSystemPrompt = "You are a helpful AI assistant. Be concise and straightforward in your responses."

	// DefaultTemperature is the sampling temperature of every request.
	DefaultTemperature = 0.7
)

// HistoryMode selects what context a request carries.
type HistoryMode string

const (
	// HistorySingle sends only the latest user text to /api/generate.
	HistorySingle HistoryMode = "single"

	// HistoryReplay sends the whole conversation log to /api/chat.
	HistoryReplay HistoryMode = "replay"
)

// ParseHistoryMode converts a config value. Empty means HistorySingle.
func ParseHistoryMode(s string) (HistoryMode, bool) {
	switch HistoryMode(s) {
	case "", HistorySingle:
		return HistorySingle, true
	case HistoryReplay:
		return HistoryReplay, true
	default:
		return HistorySingle, false
	}
}

// =============================================================================
// OPTIONS
// =============================================================================

type options struct {
	model        string
	systemPrompt string
	temperature  float64
	pacing       time.Duration
	timeout      time.Duration
	history      HistoryMode
	logger       zerolog.Logger
	metrics      *telemetry.Metrics
}

func defaultOptions() options {
	return options{
		systemPrompt: DefaultSystemPrompt,
		temperature:  DefaultTemperature,
		history:      HistorySingle,
		logger:       zerolog.Nop(),
	}
}

// Option configures a Controller.
type Option func(*options)

// WithModel sets the initially selected model.
func WithModel(name string) Option {
	return func(o *options) { o.model = name }
}

// WithSystemPrompt overrides the fixed system prompt.
func WithSystemPrompt(prompt string) Option {
	return func(o *options) { o.systemPrompt = prompt }
}

// WithTemperature overrides the sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *options) { o.temperature = t }
}

// WithPacing delays each delivered token by at least d. Zero disables it.
func WithPacing(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.pacing = d
		}
	}
}

// WithTimeout bounds a whole generation request. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) {
		if d >= 0 {
			o.timeout = d
		}
	}
}

// WithHistory selects the history mode.
func WithHistory(mode HistoryMode) Option {
	return func(o *options) {
		if mode == HistorySingle || mode == HistoryReplay {
			o.history = mode
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithMetrics records turn outcomes in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(o *options) { o.metrics = m }
}
