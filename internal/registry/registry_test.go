// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package registry

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/telemetry"
)

func clientFor(url string) *ollama.Client {
	return ollama.NewClientWithConfig(&ollama.ClientConfig{BaseURL: url})
}

func TestListModels_OK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"models":[{"name":"llama3.2:3b"},{"name":""},{"name":"gemma3:1b"}]}`)
	}))
	defer srv.Close()

	r := New(clientFor(srv.URL))
	models, err := r.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3.2:3b", "gemma3:1b"}, models)
	assert.Equal(t, "llama3.2:3b", r.Default(models))
}

func TestListModels_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	m := telemetry.NewMetrics()
	r := New(clientFor(url), WithMetrics(m))

	var models []string
	var err error
	assert.NotPanics(t, func() {
		models, err = r.ListModels(context.Background())
	})
	assert.NotNil(t, models)
	assert.Empty(t, models)
	assert.True(t, ollama.IsType(err, ollama.ErrTypeRegistryUnavailable), "got %v", err)
	assert.Equal(t, DefaultFallbackModel, r.Default(models))
}

func TestListModels_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	models, err := New(clientFor(srv.URL)).ListModels(context.Background())
	assert.Empty(t, models)
	assert.True(t, ollama.IsType(err, ollama.ErrTypeRegistryUnavailable))
}

func TestListModels_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	r := New(clientFor(srv.URL), WithTimeout(50*time.Millisecond))
	start := time.Now()
	models, err := r.ListModels(context.Background())
	assert.Empty(t, models)
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
}

func TestOptions(t *testing.T) {
	r := New(nil, WithFallback("phi3"), WithFallback(""), WithTimeout(0))
	assert.Equal(t, "phi3", r.Fallback())
	assert.Equal(t, DefaultTimeout, r.timeout)
	assert.Equal(t, "phi3", r.Default(nil))
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Ollama is running")
	}))
	r := New(clientFor(srv.URL))
	assert.NoError(t, r.Ping(context.Background()))

	srv.Close()
	err := r.Ping(context.Background())
	assert.True(t, ollama.IsType(err, ollama.ErrTypeRegistryUnavailable))
}
