// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines the chat key bindings.
type KeyMap struct {
	Submit    key.Binding
	Cancel    key.Binding
	NextModel key.Binding
	PrevModel key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	Quit      key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "stop"),
		),
		NextModel: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("Tab", "model"),
		),
		PrevModel: key.NewBinding(
			key.WithKeys("shift+tab"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup"),
			key.WithHelp("PgUp", "scroll"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("C-c", "quit"),
		),
	}
}

// ShortHelp renders the bindings that have help text as one line.
func (k KeyMap) ShortHelp() string {
	var parts []string
	for _, b := range []key.Binding{k.Submit, k.Cancel, k.NextModel, k.PageUp, k.Quit} {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, "  ")
}
