// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package server exposes the optional local telemetry endpoint.
//
// It is started only when telemetry.metrics_addr is configured, and serves:
//   - GET /metrics  Prometheus metrics for the running session
//   - GET /healthz  liveness, always 200
//   - GET /readyz   200 when the Ollama server answers, 503 otherwise
//
// The endpoint is read-only; it cannot submit prompts or change the model.
package server
