// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/LAGkitty/ollama-GUI/internal/model"
	"github.com/LAGkitty/ollama-GUI/internal/ui/styles"
	"github.com/LAGkitty/ollama-GUI/internal/util"
)

// streamCursor trails the partial response while tokens arrive.
const streamCursor = "▎"

// =============================================================================
// LAYOUT
// =============================================================================

func (m Model) render() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		m.renderHeader(),
		m.viewport.View(),
		m.renderInput(),
		m.renderStatusBar(),
	)
}

func (m Model) renderHeader() string {
	title := m.theme.Title.Render("Ollama Chat")

	name := m.ctrl.Model()
	switch {
	case name == "" && !m.modelsDone:
		name = "loading models..."
	case name == "":
		name = "no model"
	}
	chip := m.theme.ModelChip.Render(util.TruncateWidth(name, 40))

	left := title + " " + chip
	hint := m.theme.Hint.Render(m.keys.ShortHelp())
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(hint)
	if gap < 1 {
		return left + "\n"
	}
	return left + strings.Repeat(" ", gap) + hint + "\n"
}

func (m Model) renderInput() string {
	style := m.theme.Input
	if m.ctrl.State().Busy() {
		style = m.theme.InputDisabled
	}
	if m.width > 2 {
		style = style.Width(m.width - 2)
	}
	return style.Render(m.input.View())
}

func (m Model) renderStatusBar() string {
	text, kind := m.tr.status, m.tr.statusKind
	if m.tr.notice != "" {
		text, kind = m.tr.notice, m.tr.noticeKind
	}
	if m.width > 8 {
		text = util.TruncateWidth(text, m.width-8)
	}
	line := m.theme.RenderStatus(kind, text)
	if kind == styles.StatusBusy {
		line = m.spinner.View() + line
	}
	return line
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

func (m Model) renderTranscript(width int) string {
	body := m.theme.Body
	if width > 4 {
		body = body.Width(width - 2)
	}

	var b strings.Builder
	b.WriteString(m.theme.Welcome.Render(WelcomeMessage))
	b.WriteString("\n")

	for _, e := range m.tr.entries {
		b.WriteString("\n")
		switch e.kind {
		case entryUser:
			b.WriteString(m.theme.UserLabel.Render(model.RoleUser.DisplayName()))
			b.WriteString("\n")
			b.WriteString(body.Render(e.text))
		case entryAssistant:
			b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
			b.WriteString("\n")
			b.WriteString(body.Render(e.text))
		case entryError:
			b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
			b.WriteString("\n")
			if e.partial != "" {
				b.WriteString(m.theme.Partial.Render(e.partial))
				b.WriteString("\n")
			}
			b.WriteString(m.theme.RenderStatus(styles.StatusError, e.text))
		case entryNotice:
			b.WriteString(m.theme.Hint.Render(e.text))
		}
		b.WriteString("\n")
	}

	if m.tr.streaming {
		b.WriteString("\n")
		b.WriteString(m.theme.AssistantLabel.Render(model.RoleAssistant.DisplayName()))
		b.WriteString("\n")
		b.WriteString(body.Render(m.tr.partial + streamCursor))
		b.WriteString("\n")
	}

	return b.String()
}
