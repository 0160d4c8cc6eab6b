// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session runs a streaming chat session against Ollama.
//
// A Controller owns the conversation log and the session state. It runs at
// most one generation request at a time and reports progress through
// Callbacks.
//
// # Key Types
//
//   - Controller: accepts submissions and drives one stream per turn
//   - State: Idle, Sending, Streaming, Completing, Failing
//   - Callbacks: OnToken, OnComplete, OnError (plus OnState for observers)
//   - Executor: the foreground context callbacks are marshalled onto
//   - Loop: a goroutine-backed Executor for non-TUI front ends
//
// # Threading
//
// Controller methods and all callbacks run on the foreground context, the
// goroutine that drains the Executor. The stream worker never touches
// controller state; it only posts closures to the Executor. No locks are
// involved, so controller methods must not be called from any other
// goroutine. Use Loop.Do or Loop.Post to get there.
//
// # Usage
//
//	loop := session.NewLoop()
//	go loop.Run(ctx)
//
//	ctrl := session.New(client, loop, session.Callbacks{
//	    OnToken:    func(partial string) { render(partial) },
//	    OnComplete: func(final string) { render(final) },
//	    OnError: func(err *ollama.ClientError, partial string) {
//	        status(err.UserMessage())
//	    },
//	}, session.WithModel("gemma3:1b"))
//
//	loop.Do(func() { ctrl.Submit("Hello") })
package session
