// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// StatusKind selects the status bar coloring.
type StatusKind int

const (
	StatusReady StatusKind = iota
	StatusBusy
	StatusWarning
	StatusError
)

// Theme holds the styles used by the chat view.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	Width  int
	Height int

	// Header
	Title     lipgloss.Style
	ModelChip lipgloss.Style
	Hint      lipgloss.Style

	// Transcript
	UserLabel      lipgloss.Style
	AssistantLabel lipgloss.Style
	Body           lipgloss.Style
	Welcome        lipgloss.Style
	Partial        lipgloss.Style

	// Input
	Input         lipgloss.Style
	InputDisabled lipgloss.Style

	// Status bar, one style per StatusKind
	status [4]lipgloss.Style
}

// NewTheme detects the terminal and builds the styles.
func NewTheme() *Theme {
	return NewThemeWithProfile(termenv.ColorProfile(), termenv.HasDarkBackground())
}

// NewThemeWithProfile builds the styles for a fixed profile.
func NewThemeWithProfile(profile termenv.Profile, dark bool) *Theme {
	lipgloss.SetColorProfile(profile)
	lipgloss.SetHasDarkBackground(dark)

	t := &Theme{IsDark: dark, ColorProfile: profile}
	t.initStyles()
	return t
}

func (t *Theme) initStyles() {
	t.Title = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.ModelChip = lipgloss.NewStyle().
		Foreground(Purple).
		Background(SurfaceDim).
		Padding(0, 1)
	t.Hint = lipgloss.NewStyle().Foreground(TextMuted)

	t.UserLabel = lipgloss.NewStyle().Bold(true).Foreground(Cyan)
	t.AssistantLabel = lipgloss.NewStyle().Bold(true).Foreground(Purple)
	t.Body = lipgloss.NewStyle().Foreground(TextPrimary)
	t.Welcome = lipgloss.NewStyle().Foreground(TextSecondary).Italic(true)
	t.Partial = lipgloss.NewStyle().Foreground(TextSecondary)

	t.Input = lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(Cyan).
		Padding(0, 1)
	t.InputDisabled = t.Input.BorderForeground(Overlay)

	base := lipgloss.NewStyle().Padding(0, 1)
	t.status[StatusReady] = base.Foreground(Emerald)
	t.status[StatusBusy] = base.Foreground(Amber)
	t.status[StatusWarning] = base.Foreground(Amber).Bold(true)
	t.status[StatusError] = base.Foreground(Rose).Bold(true)
}

// SetSize records the terminal size.
func (t *Theme) SetSize(width, height int) {
	t.Width = width
	t.Height = height
}

// RenderStatus renders a status bar message with its shape indicator.
func (t *Theme) RenderStatus(kind StatusKind, msg string) string {
	if kind < StatusReady || kind > StatusError {
		kind = StatusReady
	}
	return t.status[kind].Render(indicator(kind) + " " + msg)
}

func indicator(kind StatusKind) string {
	switch kind {
	case StatusBusy:
		return StatusIndicators.Busy
	case StatusWarning:
		return StatusIndicators.Warning
	case StatusError:
		return StatusIndicators.Error
	default:
		return StatusIndicators.Ready
	}
}
