// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for conversations.
//
// # Key Types
//
//   - Role: who produced a turn (user or assistant)
//   - Turn: one immutable message in the conversation
//   - Log: append-only, ordered sequence of turns
//
// # Usage
//
//	var log model.Log
//	_ = log.Append(model.NewUserTurn("Hello"))
//	_ = log.Append(model.NewAssistantTurn("Hi there"))
//	for _, t := range log.Snapshot() {
//	    fmt.Println(t.Role.DisplayName(), t.Content)
//	}
//
// A Log is not safe for concurrent use. It is owned by a single session
// controller and only touched from that controller's foreground context.
package model
