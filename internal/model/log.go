// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import "errors"

var (
	// ErrOutOfOrder is returned when an assistant turn does not directly
	// follow a user turn.
	ErrOutOfOrder = errors.New("assistant turn must follow a user turn")

	// ErrInvalidRole is returned for turns with an unknown role.
	ErrInvalidRole = errors.New("invalid turn role")
)

// =============================================================================
// CONVERSATION LOG
// =============================================================================

// Log is an ordered, append-only sequence of turns.
//
// Turns start with a user turn and alternate, except that a failed
// generation leaves a user turn without a reply, so consecutive user turns
// are allowed. Consecutive assistant turns are not.
//
// The zero value is an empty log ready to use.
type Log struct {
	turns []Turn
}

// Append adds a turn at the end of the log.
func (l *Log) Append(t Turn) error {
	if !t.Role.Valid() {
		return ErrInvalidRole
	}
	if t.Role == RoleAssistant {
		if len(l.turns) == 0 || l.turns[len(l.turns)-1].Role != RoleUser {
			return ErrOutOfOrder
		}
	}
	l.turns = append(l.turns, t)
	return nil
}

// Snapshot returns a copy of the turns in append order.
func (l *Log) Snapshot() []Turn {
	out := make([]Turn, len(l.turns))
	copy(out, l.turns)
	return out
}

// Len returns the number of turns.
func (l *Log) Len() int {
	return len(l.turns)
}

// Last returns the most recent turn, if any.
func (l *Log) Last() (Turn, bool) {
	if len(l.turns) == 0 {
		return Turn{}, false
	}
	return l.turns[len(l.turns)-1], true
}
