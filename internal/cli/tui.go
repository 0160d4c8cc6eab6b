// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/LAGkitty/ollama-GUI/internal/config"
	"github.com/LAGkitty/ollama-GUI/internal/ui/chat"
	"github.com/LAGkitty/ollama-GUI/internal/ui/styles"
)

// errNoTTY is returned when the full-screen UI is started without a terminal.
var errNoTTY = errors.New("the chat window needs a terminal; use 'ollama-chat chat' or 'ollama-chat ask' instead")

func newTUICommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the full-screen chat (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}
}

// =============================================================================
// FULL-SCREEN UI
// =============================================================================

func (a *app) runTUI(cmd *cobra.Command) error {
	if !IsTTY() || !IsStdoutTTY() {
		return errNoTTY
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	theme := styles.NewThemeWithProfile(GetColorProfile(), lipgloss.HasDarkBackground())
	exec := chat.NewProgramExecutor()
	m := chat.New(chat.Options{
		Theme:     theme,
		Registry:  a.registry,
		Generator: a.client,
		Executor:  exec,
		Logger:    a.log.Logger,
		Session:   a.sessionOptions(),
	})

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	exec.Bind(p)

	err := config.Watch(ctx, a.configPath, func(cfg *config.Config, err error) {
		if err == nil {
			a.applyFlags(cmd, cfg)
		}
		p.Send(chat.ConfigReloadedMsg{Config: cfg, Err: err})
	})
	if err != nil {
		a.log.Warn().Err(err).Msg("config watch disabled")
	}

	// Every copy of the model shares one controller.
	_, err = p.Run()
	m.Controller().Close()
	if err != nil && ctx.Err() != nil {
		return nil
	}
	return err
}

// notifyInterrupt relays Ctrl+C while a line-mode turn streams.
func notifyInterrupt() (<-chan os.Signal, func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch, func() { signal.Stop(ch) }
}
