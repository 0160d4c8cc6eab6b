// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the palette and Lip Gloss styles for the chat UI.
//
// All colors are lipgloss.AdaptiveColor values so the UI reads on light and
// dark terminals. NewTheme detects the terminal profile via termenv; tests
// use NewThemeWithProfile to get deterministic output.
//
// Every status rendering carries an ASCII shape ("[!]", "[X]") in addition
// to its color.
package styles
