// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/LAGkitty/ollama-GUI/internal/ollama"
)

func newModelsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List installed models",
		Long: `List the models installed on the Ollama server, one per line.

If the server cannot be reached a warning goes to stderr and the fallback
model is printed, which is the model a new chat would start with.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			models, err := a.registry.ListModels(cmd.Context())
			if err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), renderWarning(ollama.AsClientError(err).UserMessage()))
				fmt.Fprintln(cmd.OutOrStdout(), a.registry.Fallback())
				return nil
			}
			for _, name := range models {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
