// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"errors"
	"testing"
)

// =============================================================================
// ROLE TESTS
// =============================================================================

func TestRole_DisplayName(t *testing.T) {
	tests := []struct {
		role Role
		want string
	}{
		{RoleUser, "You"},
		{RoleAssistant, "AI"},
		{Role("other"), "other"},
	}

	for _, tt := range tests {
		if got := tt.role.DisplayName(); got != tt.want {
			t.Errorf("%q.DisplayName() = %q, want %q", tt.role, got, tt.want)
		}
	}
}

// =============================================================================
// LOG TESTS
// =============================================================================

func TestLog_AppendAndSnapshot(t *testing.T) {
	var log Log

	if log.Len() != 0 {
		t.Fatalf("zero Log Len = %d, want 0", log.Len())
	}
	if _, ok := log.Last(); ok {
		t.Error("Last() on empty log should report false")
	}

	if err := log.Append(NewUserTurn("hi")); err != nil {
		t.Fatalf("Append user: %v", err)
	}
	if err := log.Append(NewAssistantTurn("Hello")); err != nil {
		t.Fatalf("Append assistant: %v", err)
	}

	snap := log.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("Snapshot len = %d, want 2", len(snap))
	}
	if snap[0] != (Turn{Role: RoleUser, Content: "hi"}) {
		t.Errorf("snap[0] = %+v", snap[0])
	}
	if snap[1] != (Turn{Role: RoleAssistant, Content: "Hello"}) {
		t.Errorf("snap[1] = %+v", snap[1])
	}

	last, ok := log.Last()
	if !ok || last.Content != "Hello" {
		t.Errorf("Last() = %+v, %v", last, ok)
	}
}

func TestLog_SnapshotIsCopy(t *testing.T) {
	var log Log
	_ = log.Append(NewUserTurn("original"))

	snap := log.Snapshot()
	snap[0].Content = "mutated"

	if got := log.Snapshot()[0].Content; got != "original" {
		t.Errorf("log changed through snapshot: %q", got)
	}
}

func TestLog_Ordering(t *testing.T) {
	tests := []struct {
		name    string
		turns   []Turn
		wantErr error
	}{
		{
			name:    "assistant first",
			turns:   []Turn{NewAssistantTurn("x")},
			wantErr: ErrOutOfOrder,
		},
		{
			name:    "two assistants",
			turns:   []Turn{NewUserTurn("a"), NewAssistantTurn("b"), NewAssistantTurn("c")},
			wantErr: ErrOutOfOrder,
		},
		{
			name:  "user after failed generation",
			turns: []Turn{NewUserTurn("a"), NewUserTurn("a again"), NewAssistantTurn("b")},
		},
		{
			name:    "unknown role",
			turns:   []Turn{{Role: "system", Content: "x"}},
			wantErr: ErrInvalidRole,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var log Log
			var err error
			for _, turn := range tt.turns {
				if err = log.Append(turn); err != nil {
					break
				}
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLog_RejectedAppendLeavesLogUnchanged(t *testing.T) {
	var log Log
	_ = log.Append(NewUserTurn("a"))
	_ = log.Append(NewAssistantTurn("b"))

	if err := log.Append(NewAssistantTurn("c")); err == nil {
		t.Fatal("expected error")
	}
	if log.Len() != 2 {
		t.Errorf("Len = %d, want 2", log.Len())
	}
}
