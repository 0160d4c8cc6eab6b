// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading for ollama-chat.
//
// Configuration is read from ~/.ollama-chat/config.toml. A missing file is
// not an error; defaults are used. Environment variables prefixed with
// OLLAMA_CHAT_ are applied on top, then the result is validated.
//
// # Example
//
//	default_model = "llama3.2:3b"
//
//	[ollama]
//	url = "http://localhost:11434"
//	fallback_model = "gemma3:1b"
//	registry_timeout = "2s"
//
//	[generation]
//	temperature = 0.7
//	history = "single"     # or "replay"
//	token_pacing = "10ms"  # 0s disables pacing
//	timeout = "0s"         # 0s means no timeout
//
//	[logging]
//	level = "info"
//
// # Environment
//
//	OLLAMA_CHAT_URL, OLLAMA_CHAT_MODEL, OLLAMA_CHAT_FALLBACK_MODEL,
//	OLLAMA_CHAT_TEMPERATURE, OLLAMA_CHAT_HISTORY, OLLAMA_CHAT_TOKEN_PACING,
//	OLLAMA_CHAT_TIMEOUT, OLLAMA_CHAT_LOG_LEVEL, OLLAMA_CHAT_LOG_FILE,
//	OLLAMA_CHAT_METRICS_ADDR
//
// # Hot Reload
//
// Watch re-reads the file whenever it changes so a running TUI can pick up
// a new default model or pacing without a restart.
package config
