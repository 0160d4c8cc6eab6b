// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return NewClientWithConfig(&ClientConfig{BaseURL: srv.URL + "/", Timeout: time.Second})
}

// closedURL returns an address nothing is listening on.
func closedURL() string {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestNewClientWithConfig_Defaults(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{})
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
	assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
	assert.Zero(t, c.streamClient.Timeout, "stream client must not time out")

	c = NewClientWithConfig(nil)
	assert.Equal(t, DefaultBaseURL, c.BaseURL())
}

func TestListModels(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = io.WriteString(w, `{"models":[{"name":"gemma3:1b","size":1},{"name":"llama3.2:3b"}]}`)
	})

	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "gemma3:1b", models[0].Name)
	assert.Equal(t, "llama3.2:3b", models[1].Name)
}

func TestListModels_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := c.ListModels(context.Background())
	require.Error(t, err)
	ce := AsClientError(err)
	assert.Equal(t, ErrTypeHTTP, ce.Type)
	assert.Equal(t, http.StatusInternalServerError, ce.Status)
}

func TestListModels_ConnectionRefused(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: closedURL()})
	_, err := c.ListModels(context.Background())
	assert.True(t, IsConnectionRefused(err), "got %v", err)
	assert.True(t, errors.Is(err, ErrConnectionRefused))
}

func TestPing(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "Ollama is running")
	})
	assert.NoError(t, c.Ping(context.Background()))

	down := NewClientWithConfig(&ClientConfig{BaseURL: closedURL()})
	assert.Error(t, down.Ping(context.Background()))
}

func TestOpenGenerate_RequestBody(t *testing.T) {
	var got GenerateRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, "{\"response\":\"ok\"}\n{\"done\":true}\n")
	})

	body, err := c.OpenGenerate(context.Background(), GenerateRequest{
		Model:   "gemma3:1b",
		Prompt:  "hi",
		System:  "be brief",
		Options: &Options{Temperature: 0.7},
	})
	require.NoError(t, err)
	defer body.Close()

	inc, err := NewDecoder(body).Next()
	require.NoError(t, err)
	assert.Equal(t, "ok", inc.Token)

	assert.Equal(t, "gemma3:1b", got.Model)
	assert.Equal(t, "hi", got.Prompt)
	assert.Equal(t, "be brief", got.System)
	assert.True(t, got.Stream, "stream must be forced on")
	require.NotNil(t, got.Options)
	assert.Equal(t, 0.7, got.Options.Temperature)
}

func TestOpenGenerate_WireShape(t *testing.T) {
	var raw map[string]any
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		_, _ = io.WriteString(w, "{\"done\":true}\n")
	})

	body, err := c.OpenGenerate(context.Background(), GenerateRequest{
		Model: "m", Prompt: "p", System: "s", Options: &Options{Temperature: 0.7},
	})
	require.NoError(t, err)
	body.Close()

	assert.Equal(t, true, raw["stream"])
	assert.Equal(t, map[string]any{"temperature": 0.7}, raw["options"])
	assert.Equal(t, "s", raw["system"])
}

func TestOpenChat(t *testing.T) {
	var got ChatRequest
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = io.WriteString(w, "{\"message\":{\"role\":\"assistant\",\"content\":\"yo\"}}\n{\"done\":true}\n")
	})

	body, err := c.OpenChat(context.Background(), ChatRequest{
		Model:    "m",
		Messages: []Message{{Role: "system", Content: "s"}, {Role: "user", Content: "hi"}},
	})
	require.NoError(t, err)
	defer body.Close()

	inc, err := NewDecoder(body).Next()
	require.NoError(t, err)
	assert.Equal(t, "yo", inc.Token)
	assert.True(t, got.Stream)
	assert.Len(t, got.Messages, 2)
}

func TestOpenGenerate_HTTPError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":"model 'nope' not found"}`)
	})

	_, err := c.OpenGenerate(context.Background(), GenerateRequest{Model: "nope", Prompt: "x"})
	ce := AsClientError(err)
	require.NotNil(t, ce)
	assert.Equal(t, ErrTypeHTTP, ce.Type)
	assert.Equal(t, http.StatusNotFound, ce.Status)
	assert.Equal(t, "model 'nope' not found", ce.Message)
	assert.Equal(t, "Error: HTTP 404", ce.UserMessage())
	assert.True(t, errors.Is(err, &ClientError{Type: ErrTypeHTTP, Status: 404}))
	assert.False(t, errors.Is(err, &ClientError{Type: ErrTypeHTTP, Status: 500}))
}

func TestOpenGenerate_ConnectionRefused(t *testing.T) {
	c := NewClientWithConfig(&ClientConfig{BaseURL: closedURL()})
	_, err := c.OpenGenerate(context.Background(), GenerateRequest{Model: "m", Prompt: "x"})
	assert.True(t, IsConnectionRefused(err), "got %v", err)
	assert.Equal(t, "Could not connect to Ollama. Make sure it's running.", AsClientError(err).UserMessage())
}

func TestOpenGenerate_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {})
	_, err := c.OpenGenerate(ctx, GenerateRequest{Model: "m", Prompt: "x"})
	assert.True(t, IsCanceled(err), "got %v", err)
}

func TestErrorType_String(t *testing.T) {
	tests := []struct {
		t    ErrorType
		want string
	}{
		{ErrTypeRegistryUnavailable, "RegistryUnavailable"},
		{ErrTypeConnectionRefused, "ConnectionRefused"},
		{ErrTypeHTTP, "HttpError"},
		{ErrTypeMalformedChunk, "MalformedChunk"},
		{ErrTypeStreamTruncated, "StreamTruncated"},
		{ErrTypeUnknown, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.t.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestAsClientError_WrapsForeign(t *testing.T) {
	assert.Nil(t, AsClientError(nil))
	ce := AsClientError(errors.New("boom"))
	assert.Equal(t, ErrTypeUnknown, ce.Type)
	assert.Contains(t, ce.Error(), "boom")
}
