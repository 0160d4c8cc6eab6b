// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LAGkitty/ollama-GUI/internal/session"
	"github.com/LAGkitty/ollama-GUI/internal/util"
)

// errEmptyPrompt is returned when ask has nothing to send.
var errEmptyPrompt = errors.New("nothing to ask: pass a prompt or pipe one on stdin")

// errCanceled is returned when an interrupt stopped the reply.
var errCanceled = errors.New("canceled")

func newAskCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ask [PROMPT...]",
		Short: "Stream a single reply to stdout",
		Long: `Send one prompt and stream the reply to stdout.

With no arguments the prompt is read from stdin:

  echo "Explain NDJSON in one sentence" | ollama-chat ask`,
		RunE: func(cmd *cobra.Command, args []string) error {
			prompt := strings.Join(args, " ")
			if len(args) == 0 {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read prompt: %w", err)
				}
				prompt = string(data)
			}
			return a.runAsk(cmd.Context(), prompt, cmd.OutOrStdout())
		},
	}
}

func (a *app) runAsk(ctx context.Context, prompt string, out io.Writer) error {
	prompt = util.CleanInput(prompt)
	if prompt == "" {
		return errEmptyPrompt
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := session.NewLoop()
	go loop.Run(ctx)
	defer loop.Close()

	pr := newPrinter(out, "")
	ctrl := session.New(a.client, loop, pr.callbacks(), a.sessionOptions()...)
	defer loop.Do(ctrl.Close)

	if a.cfg.DefaultModel == "" {
		models, _ := a.registry.ListModels(ctx)
		name := a.registry.Default(models)
		loop.Do(func() { ctrl.SetModel(name) })
	}

	interrupts, stop := a.interruptChannel()
	defer stop()

	var started bool
	if !loop.Do(func() { started = ctrl.Submit(prompt) }) || !started {
		return errEmptyPrompt
	}

	canceled := false
	for {
		select {
		case <-pr.idle:
			// The idle signal is sent from the loop after OnError ran.
			if pr.failure != nil {
				return fmt.Errorf("%s (%w)", pr.failure.UserMessage(), pr.failure)
			}
			if canceled {
				return errCanceled
			}
			return nil
		case <-interrupts:
			canceled = true
			loop.Post(func() { ctrl.Cancel() })
		case <-loop.Done():
			return ctx.Err()
		}
	}
}
