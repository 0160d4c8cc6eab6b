// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import "time"

// =============================================================================
// REQUEST TYPES
// =============================================================================

// Message is one entry of a /api/chat conversation.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Options carries the sampling parameters sent with every request.
type Options struct {
	Temperature float64 `json:"temperature"`
}

// GenerateRequest is the request body for /api/generate.
type GenerateRequest struct {
	Model   string   `json:"model"`
	Prompt  string   `json:"prompt"`
	System  string   `json:"system,omitempty"`
	Stream  bool     `json:"stream"`
	Options *Options `json:"options,omitempty"`
}

// ChatRequest is the request body for /api/chat. It is only used when
// history replay is enabled.
type ChatRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
	Stream   bool      `json:"stream"`
	Options  *Options  `json:"options,omitempty"`
}

// =============================================================================
// RESPONSE TYPES
// =============================================================================

// Chunk is a single line of a streamed /api/generate or /api/chat body.
// Fields not present on the wire stay at their zero value.
type Chunk struct {
	Model     string   `json:"model,omitempty"`
	CreatedAt string   `json:"created_at,omitempty"`
	Response  string   `json:"response,omitempty"`
	Message   *Message `json:"message,omitempty"`
	Done      bool     `json:"done"`
	Error     string   `json:"error,omitempty"`

	// Only set on the terminal chunk.
	TotalDuration   int64 `json:"total_duration,omitempty"`
	PromptEvalCount int   `json:"prompt_eval_count,omitempty"`
	EvalCount       int   `json:"eval_count,omitempty"`
	EvalDuration    int64 `json:"eval_duration,omitempty"`
}

// Token returns the text carried by the chunk for either endpoint.
func (c *Chunk) Token() string {
	if c.Response != "" {
		return c.Response
	}
	if c.Message != nil {
		return c.Message.Content
	}
	return ""
}

// ModelInfo describes one model returned by /api/tags.
type ModelInfo struct {
	Name       string       `json:"name"`
	Model      string       `json:"model,omitempty"`
	ModifiedAt time.Time    `json:"modified_at"`
	Size       int64        `json:"size"`
	Digest     string       `json:"digest"`
	Details    ModelDetails `json:"details"`
}

// ModelDetails holds the optional model metadata Ollama reports.
type ModelDetails struct {
	Family            string `json:"family,omitempty"`
	ParameterSize     string `json:"parameter_size,omitempty"`
	QuantizationLevel string `json:"quantization_level,omitempty"`
}

// ListModelsResponse is the response from /api/tags.
type ListModelsResponse struct {
	Models []ModelInfo `json:"models"`
}

// errorBody is the JSON shape Ollama uses for error responses.
type errorBody struct {
	Error string `json:"error"`
}

// =============================================================================
// INCREMENTS
// =============================================================================

// Increment is one decoded unit of a streamed response.
type Increment struct {
	Token string
	Done  bool

	// Stats is populated only when Done is true.
	Stats *GenerationStats
}

// GenerationStats are the server-side counters reported on the final chunk.
type GenerationStats struct {
	PromptTokens  int
	OutputTokens  int
	TotalDuration time.Duration
	EvalDuration  time.Duration
}

// TokensPerSecond returns the generation rate reported by the server.
func (s GenerationStats) TokensPerSecond() float64 {
	if s.EvalDuration <= 0 {
		return 0
	}
	return float64(s.OutputTokens) / s.EvalDuration.Seconds()
}

func statsFromChunk(c *Chunk) *GenerationStats {
	return &GenerationStats{
		PromptTokens:  c.PromptEvalCount,
		OutputTokens:  c.EvalCount,
		TotalDuration: time.Duration(c.TotalDuration),
		EvalDuration:  time.Duration(c.EvalDuration),
	}
}
