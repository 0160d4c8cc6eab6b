// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util holds small helpers shared by the front ends and the config
// layer.
//
// # Key Functions
//
// Text:
//   - CleanInput: normalizes typed or pasted prompt text before submission
//   - TruncateWidth: cuts a string to a terminal column width
//   - Width: display width of a string, counting wide runes as two columns
//
// Files:
//   - AtomicWriteFile: crash-safe file replacement
package util
