// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

const (
	// DefaultBaseURL is where a local Ollama listens unless told otherwise.
	DefaultBaseURL = "http://localhost:11434"

	// DefaultTimeout bounds the non-streaming calls (tags, ping).
	DefaultTimeout = 2 * time.Second
)

// ClientConfig holds configuration options for the Ollama client.
type ClientConfig struct {
	// BaseURL is the Ollama API base URL (default: http://localhost:11434)
	BaseURL string

	// Timeout for non-streaming requests (default: 2s)
	Timeout time.Duration

	// Transport overrides the HTTP transport. Nil uses http.DefaultTransport.
	Transport http.RoundTripper
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultBaseURL,
		Timeout: DefaultTimeout,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client handles communication with the Ollama API.
//
// The Client is safe for concurrent use. Streaming calls hand the response
// body back to the caller, who decodes it with a Decoder and must close it.
type Client struct {
	config *ClientConfig

	// httpClient is used for short calls and carries config.Timeout.
	httpClient *http.Client

	// streamClient has no timeout; generation may legitimately run for
	// minutes and is bounded only by the request context.
	streamClient *http.Client
}

// NewClient creates a new Ollama client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new Ollama client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}

	return &Client{
		config:       config,
		httpClient:   &http.Client{Timeout: config.Timeout, Transport: config.Transport},
		streamClient: &http.Client{Transport: config.Transport},
	}
}

// BaseURL returns the server address the client talks to.
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// =============================================================================
// HEALTH CHECK
// =============================================================================

// Ping verifies that Ollama is reachable.
func (c *Client) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/", nil)
	if err != nil {
		return &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return httpError(resp)
	}
	return nil
}

// =============================================================================
// MODEL OPERATIONS
// =============================================================================

// ListModels retrieves all locally installed models from /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, httpError(resp)
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to decode model list", Cause: err}
	}

	return result.Models, nil
}

// =============================================================================
// STREAMING
// =============================================================================

// OpenGenerate posts a streaming /api/generate request and returns the
// response body once a 200 status has been received. Stream is forced on.
func (c *Client) OpenGenerate(ctx context.Context, req GenerateRequest) (io.ReadCloser, error) {
	req.Stream = true
	return c.openStream(ctx, "/api/generate", req)
}

// OpenChat posts a streaming /api/chat request. Used for history replay.
func (c *Client) OpenChat(ctx context.Context, req ChatRequest) (io.ReadCloser, error) {
	req.Stream = true
	return c.openStream(ctx, "/api/chat", req)
}

func (c *Client) openStream(ctx context.Context, path string, payload any) (io.ReadCloser, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to marshal request", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeUnknown, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/x-ndjson")

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(ctx, err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, httpError(resp)
	}

	return resp.Body, nil
}

// =============================================================================
// HELPERS
// =============================================================================

// httpError builds an ErrTypeHTTP error, using Ollama's {"error": ...}
// body as the message when one is present.
func httpError(resp *http.Response) *ClientError {
	msg := "unexpected status: " + resp.Status
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	var eb errorBody
	if json.Unmarshal(data, &eb) == nil && eb.Error != "" {
		msg = eb.Error
	}
	return &ClientError{Type: ErrTypeHTTP, Status: resp.StatusCode, Message: msg}
}

// classifyTransportError maps a failed round trip onto the taxonomy.
// Caller cancellation wins over everything else.
func classifyTransportError(ctx context.Context, err error) *ClientError {
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
		}
		return &ClientError{Type: ErrTypeCanceled, Message: ErrCanceled.Message, Cause: err}
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return &ClientError{Type: ErrTypeTimeout, Message: ErrTimeout.Message, Cause: err}
	}
	return &ClientError{Type: ErrTypeConnectionRefused, Message: ErrConnectionRefused.Message, Cause: err}
}
