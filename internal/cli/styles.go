// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/LAGkitty/ollama-GUI/internal/ui/styles"
)

// init picks the color profile once: no colors when piped or NO_COLOR is set.
func init() {
	lipgloss.SetColorProfile(GetColorProfile())
}

// =============================================================================
// SHARED STYLES
// =============================================================================

var (
	welcomeStyle = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	userStyle    = lipgloss.NewStyle().Foreground(styles.Cyan).Bold(true)
	aiStyle      = lipgloss.NewStyle().Foreground(styles.Purple).Bold(true)
	infoStyle    = lipgloss.NewStyle().Foreground(styles.TextSecondary)
	dimStyle     = lipgloss.NewStyle().Foreground(styles.TextMuted)
	warnStyle    = lipgloss.NewStyle().Foreground(styles.Amber).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(styles.Rose).Bold(true)
)

func renderWarning(msg string) string {
	return warnStyle.Render(styles.StatusIndicators.Warning + " " + msg)
}

func renderError(msg string) string {
	return errorStyle.Render(styles.StatusIndicators.Error + " " + msg)
}
