// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the ollama-chat command tree.
//
// Commands:
//
//	ollama-chat [tui]        Full-screen chat (default)
//	ollama-chat chat         Line-mode chat with history and slash commands
//	ollama-chat ask PROMPT   Stream one reply to stdout
//	ollama-chat models       List installed models
//
// Global flags override the config file and OLLAMA_CHAT_* variables:
//
//	--config PATH        config file (default ~/.ollama-chat/config.toml)
//	--url URL            Ollama base URL
//	--model NAME         model to select at startup
//	--log-level LEVEL    debug|info|warn|error
//	--metrics-addr ADDR  serve /metrics and /healthz on ADDR
//
// Every front end drives a session.Controller. The line-mode commands run
// it on a session.Loop; the full-screen UI runs it on the Bubble Tea
// program through chat.ProgramExecutor.
package cli
