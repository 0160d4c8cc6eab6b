// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package registry lists the models a local Ollama server has installed.
//
// Listing never fails hard: when the server is unreachable or answers with
// an error, ListModels returns an empty slice together with a
// RegistryUnavailable error that callers show as status text and otherwise
// ignore. The session keeps working with the fallback model.
package registry

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/telemetry"
)

const (
	// DefaultTimeout bounds the listing call.
	DefaultTimeout = 2 * time.Second

	// DefaultFallbackModel is used when no models can be listed.
	DefaultFallbackModel = "gemma3:1b"
)

// Lister is the part of the Ollama client the registry needs.
type Lister interface {
	ListModels(ctx context.Context) ([]ollama.ModelInfo, error)
	Ping(ctx context.Context) error
}

// Option configures a Registry.
type Option func(*Registry)

// WithTimeout overrides the listing timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Registry) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// WithFallback overrides the model returned when nothing is listed.
func WithFallback(model string) Option {
	return func(r *Registry) {
		if model != "" {
			r.fallback = model
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithMetrics records lookups in m.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(r *Registry) { r.metrics = m }
}

// Registry queries the server for installed models.
type Registry struct {
	client   Lister
	timeout  time.Duration
	fallback string
	log      zerolog.Logger
	metrics  *telemetry.Metrics
}

// New creates a Registry backed by client.
func New(client Lister, opts ...Option) *Registry {
	r := &Registry{
		client:   client,
		timeout:  DefaultTimeout,
		fallback: DefaultFallbackModel,
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ListModels returns the installed model names in server order. The slice
// is never nil. A non-nil error is always a RegistryUnavailable
// *ollama.ClientError and is informational only.
func (r *Registry) ListModels(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	infos, err := r.client.ListModels(ctx)
	if err != nil {
		r.metrics.RegistryLookup(false)
		r.log.Warn().Err(err).Msg("model registry unavailable")
		return []string{}, &ollama.ClientError{
			Type:    ollama.ErrTypeRegistryUnavailable,
			Message: ollama.ErrRegistryUnavailable.Message,
			Cause:   err,
		}
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.Name != "" {
			names = append(names, info.Name)
		}
	}
	r.metrics.RegistryLookup(true)
	r.log.Debug().Int("count", len(names)).Msg("listed models")
	return names, nil
}

// Default picks the model to select at startup: the first listed one, or
// the fallback when the list is empty.
func (r *Registry) Default(models []string) string {
	if len(models) > 0 {
		return models[0]
	}
	return r.fallback
}

// Fallback returns the configured fallback model.
func (r *Registry) Fallback() string {
	return r.fallback
}

// Ping checks that the server answers at all, using the same short timeout.
func (r *Registry) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	if err := r.client.Ping(ctx); err != nil {
		return &ollama.ClientError{
			Type:    ollama.ErrTypeRegistryUnavailable,
			Message: ollama.ErrRegistryUnavailable.Message,
			Cause:   err,
		}
	}
	return nil
}
