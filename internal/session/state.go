// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

// State is the lifecycle position of a Controller.
//
// An accepted submission always moves Idle -> Sending -> Streaming ->
// Completing -> Idle or ends in Failing -> Idle. A request that never gets
// a response (connection refused, HTTP error) goes Sending -> Failing.
// Cancel returns to Idle from Sending or Streaming.
type State int

const (
	StateIdle State = iota
	StateSending
	StateStreaming
	StateCompleting
	StateFailing
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSending:
		return "sending"
	case StateStreaming:
		return "streaming"
	case StateCompleting:
		return "completing"
	case StateFailing:
		return "failing"
	default:
		return "unknown"
	}
}

// Busy reports whether a request is in flight.
func (s State) Busy() bool {
	return s != StateIdle
}
