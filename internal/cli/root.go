// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/LAGkitty/ollama-GUI/internal/config"
	"github.com/LAGkitty/ollama-GUI/internal/logging"
	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/registry"
	"github.com/LAGkitty/ollama-GUI/internal/server"
	"github.com/LAGkitty/ollama-GUI/internal/session"
	"github.com/LAGkitty/ollama-GUI/internal/telemetry"
)

// Version information, set by main from -ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// =============================================================================
// APP
// =============================================================================

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	url         string
	model       string
	logLevel    string
	metricsAddr string
}

// app holds the services built once per invocation in setup.
type app struct {
	flags globalFlags

	cfg        *config.Config
	configPath string

	log      *logging.Logger
	client   *ollama.Client
	registry *registry.Registry
	metrics  *telemetry.Metrics
	server   *server.Server

	// interrupts cancels the in-flight turn in line mode. Tests inject
	// their own channel; nil means os.Interrupt.
	interrupts <-chan os.Signal

	// openReader opens the line-mode prompt. Nil means liner.
	openReader func(historyPath string) (lineReader, error)
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	a := &app{}
	defer a.close()

	cmd := newRootCommand(a)
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), renderError(err.Error()))
		return 1
	}
	return 0
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "ollama-chat",
		Short: "Chat with a local Ollama server",
		Long: `ollama-chat streams replies from models served by a local Ollama
instance. Run without a subcommand for the full-screen chat.`,
		Version:       fmt.Sprintf("%s (commit %s, built %s)", Version, GitCommit, BuildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.flags.configPath, "config", "", "config file (default ~/.ollama-chat/config.toml)")
	pf.StringVar(&a.flags.url, "url", "", "Ollama base URL")
	pf.StringVar(&a.flags.model, "model", "", "model to use")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (debug, info, warn, error)")
	pf.StringVar(&a.flags.metricsAddr, "metrics-addr", "", "serve metrics and health checks on this address")

	root.AddCommand(
		newTUICommand(a),
		newChatCommand(a),
		newAskCommand(a),
		newModelsCommand(a),
	)
	return root
}

// =============================================================================
// SETUP
// =============================================================================

func (a *app) setup(cmd *cobra.Command) error {
	path := a.flags.configPath
	if path == "" {
		p, err := config.ConfigPath()
		if err != nil {
			return err
		}
		path = p
	}
	a.configPath = path

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return err
	}
	a.applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}
	a.cfg = cfg

	// Line-mode commands own the terminal's scrollback; only errors reach it.
	var console io.Writer
	if cmd.Name() != "tui" && cmd.Name() != cmd.Root().Name() {
		console = cmd.ErrOrStderr()
	}
	a.log, err = logging.New(logging.Options{
		Level:        cfg.Logging.Level,
		File:         cfg.LogPath(path),
		Console:      console,
		ConsoleLevel: zerolog.ErrorLevel,
	})
	if err != nil {
		return err
	}

	a.metrics = telemetry.NewMetrics()
	a.client = ollama.NewClientWithConfig(&ollama.ClientConfig{
		BaseURL: cfg.Ollama.URL,
		Timeout: cfg.Ollama.RegistryTimeout.Duration,
	})
	a.registry = registry.New(a.client,
		registry.WithTimeout(cfg.Ollama.RegistryTimeout.Duration),
		registry.WithFallback(cfg.Ollama.FallbackModel),
		registry.WithLogger(a.log.Logger),
		registry.WithMetrics(a.metrics),
	)

	a.log.Debug().
		Str("command", cmd.Name()).
		Str("config", path).
		Str("url", cfg.Ollama.URL).
		Str("version", Version).
		Msg("starting")

	if addr := cfg.Telemetry.MetricsAddr; addr != "" {
		a.server = server.New(addr, a.metrics, a.registry, a.log.Logger)
		if err := a.server.Start(); err != nil {
			return err
		}
	}
	return nil
}

// applyFlags copies explicitly set flags over cfg.
func (a *app) applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("url") {
		cfg.Ollama.URL = a.flags.url
	}
	if flags.Changed("model") {
		cfg.DefaultModel = a.flags.model
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = a.flags.logLevel
	}
	if flags.Changed("metrics-addr") {
		cfg.Telemetry.MetricsAddr = a.flags.metricsAddr
	}
}

// sessionOptions maps the loaded config onto controller options.
func (a *app) sessionOptions() []session.Option {
	gen := a.cfg.Generation
	opts := []session.Option{
		session.WithModel(a.cfg.DefaultModel),
		session.WithSystemPrompt(gen.SystemPrompt),
		session.WithTemperature(gen.Temperature),
		session.WithPacing(gen.TokenPacing.Duration),
		session.WithTimeout(gen.Timeout.Duration),
		session.WithLogger(a.log.Logger),
		session.WithMetrics(a.metrics),
	}
	if mode, ok := session.ParseHistoryMode(gen.History); ok {
		opts = append(opts, session.WithHistory(mode))
	}
	return opts
}

// interruptChannel returns the channel that cancels the current turn and a
// function that releases it.
func (a *app) interruptChannel() (<-chan os.Signal, func()) {
	if a.interrupts != nil {
		return a.interrupts, func() {}
	}
	return notifyInterrupt()
}

func (a *app) close() {
	if a.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), server.ShutdownTimeout)
		if err := a.server.Shutdown(ctx); err != nil && a.log != nil {
			a.log.Warn().Err(err).Msg("metrics server shutdown")
		}
		cancel()
		a.server = nil
	}
	if a.log != nil {
		a.log.Debug().Dur("uptime", time.Since(startTime)).Msg("exiting")
		a.log.Close()
	}
}

var startTime = time.Now()
