// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package telemetry provides local metrics for chat sessions.
//
// # Key Types
//
//   - Metrics: Prometheus collectors for turns, tokens and latency
//   - StreamStats: timing collected while a single turn streams
//
// # Usage
//
//	m := telemetry.NewMetrics()
//	stats := telemetry.NewStreamStats()
//	stats.RecordToken(1)
//	stats.Finish()
//	m.TurnCompleted(stats)
//
// All Metrics methods are safe on a nil receiver, so components can take an
// optional *Metrics without guarding every call.
//
// # Privacy
//
// Nothing leaves the machine. Metrics are only exposed when a local
// metrics address is configured, and prompt text is never recorded.
package telemetry
