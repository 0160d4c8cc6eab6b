// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/LAGkitty/ollama-GUI/internal/model"
	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/session"
	"github.com/LAGkitty/ollama-GUI/internal/ui/chat"
	"github.com/LAGkitty/ollama-GUI/internal/util"
)

// historyFileName holds line-mode input history, next to the config file.
const historyFileName = "chat_history"

func newChatCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Chat line by line in the current terminal",
		Long: `Chat line by line in the current terminal.

Type a message and press Enter. Ctrl+C stops a reply in progress; at the
prompt it exits. Type /help for commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			open := a.openReader
			if open == nil {
				open = newLinerReader
			}
			in, err := open(filepath.Join(filepath.Dir(a.configPath), historyFileName))
			if err != nil {
				return err
			}
			defer in.Close()
			return a.runChat(cmd.Context(), in, cmd.OutOrStdout())
		},
	}
}

// =============================================================================
// LINE INPUT
// =============================================================================

// lineReader is the prompt the REPL reads from.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// linerReader adds a persisted history file to liner.
type linerReader struct {
	*liner.State
	historyPath string
}

func newLinerReader(historyPath string) (lineReader, error) {
	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	l.SetMultiLineMode(true)

	if f, err := os.Open(historyPath); err == nil {
		l.ReadHistory(f)
		f.Close()
	}
	return &linerReader{State: l, historyPath: historyPath}, nil
}

// Close saves the history and restores the terminal.
func (r *linerReader) Close() error {
	if err := os.MkdirAll(filepath.Dir(r.historyPath), 0o700); err == nil {
		if f, err := os.OpenFile(r.historyPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			r.WriteHistory(f)
			f.Close()
		}
	}
	return r.State.Close()
}

// =============================================================================
// REPL
// =============================================================================

type repl struct {
	a    *app
	in   lineReader
	out  io.Writer
	loop *session.Loop
	ctrl *session.Controller
	pr   *printer

	interrupts <-chan os.Signal
}

func (a *app) runChat(ctx context.Context, in lineReader, out io.Writer) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	loop := session.NewLoop()
	go loop.Run(ctx)
	defer loop.Close()

	interrupts, stop := a.interruptChannel()
	defer stop()

	pr := newPrinter(out, aiStyle.Render(model.RoleAssistant.DisplayName()+": "))
	r := &repl{
		a:          a,
		in:         in,
		out:        out,
		loop:       loop,
		pr:         pr,
		interrupts: interrupts,
	}
	cb := pr.callbacks()
	onError := cb.OnError
	cb.OnError = func(err *ollama.ClientError, partial string) {
		onError(err, partial)
		fmt.Fprintln(out, renderError(err.UserMessage()))
	}
	r.ctrl = session.New(a.client, loop, cb, a.sessionOptions()...)
	defer loop.Do(r.ctrl.Close)

	r.greet(ctx)
	return r.loopInput(ctx)
}

func (r *repl) greet(ctx context.Context) {
	fmt.Fprintln(r.out, welcomeStyle.Render(chat.WelcomeMessage))
	fmt.Fprintln(r.out, dimStyle.Render("Type /help for commands, /quit to exit."))

	if err := r.a.registry.Ping(ctx); err != nil {
		fmt.Fprintln(r.out, renderWarning(ollama.AsClientError(err).UserMessage()))
	}

	var current string
	r.loop.Do(func() { current = r.ctrl.Model() })
	if current == "" {
		models, _ := r.a.registry.ListModels(ctx)
		current = r.a.registry.Default(models)
		r.loop.Do(func() { r.ctrl.SetModel(current) })
	}
	fmt.Fprintln(r.out, infoStyle.Render("Model: "+current))
	fmt.Fprintln(r.out)
}

func (r *repl) loopInput(ctx context.Context) error {
	prompt := model.RoleUser.DisplayName() + ": "
	for {
		line, err := r.in.Prompt(prompt)
		if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
			fmt.Fprintln(r.out)
			return nil
		}
		if err != nil {
			return err
		}

		text := util.CleanInput(line)
		if text == "" {
			continue
		}
		r.in.AppendHistory(text)

		if strings.HasPrefix(text, "/") {
			if quit := r.command(ctx, text); quit {
				return nil
			}
			continue
		}
		r.runTurn(text)
	}
}

// runTurn submits text and blocks until the turn is over. An interrupt
// cancels it.
func (r *repl) runTurn(text string) {
	var started bool
	if !r.loop.Do(func() { started = r.ctrl.Submit(text) }) || !started {
		return
	}
	for {
		select {
		case <-r.pr.idle:
			return
		case <-r.loop.Done():
			return
		case <-r.interrupts:
			r.loop.Post(func() {
				if r.ctrl.State().Busy() {
					fmt.Fprintln(r.out)
					fmt.Fprintln(r.out, dimStyle.Render("[Canceled]"))
					r.ctrl.Cancel()
				}
			})
		}
	}
}

// =============================================================================
// SLASH COMMANDS
// =============================================================================

const replHelp = `Commands:
  /models          list installed models
  /model [NAME]    show or switch the model
  /history         show this conversation
  /help            show this help
  /quit            exit (also /exit, /q, Ctrl+D)

Ctrl+C stops a reply in progress.`

// command runs a slash command and reports whether the REPL should exit.
func (r *repl) command(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	name, args := fields[0], fields[1:]

	switch name {
	case "/quit", "/exit", "/q":
		return true

	case "/help", "/?":
		fmt.Fprintln(r.out, replHelp)

	case "/models":
		r.listModels(ctx)

	case "/model":
		if len(args) == 0 {
			var current string
			r.loop.Do(func() { current = r.ctrl.Model() })
			fmt.Fprintln(r.out, infoStyle.Render("Model: "+current))
			break
		}
		next := args[0]
		r.loop.Do(func() { r.ctrl.SetModel(next) })
		fmt.Fprintln(r.out, infoStyle.Render("Model: "+next))

	case "/history":
		r.showHistory()

	default:
		fmt.Fprintln(r.out, renderWarning(fmt.Sprintf("Unknown command: %s (type /help)", name)))
	}
	return false
}

func (r *repl) listModels(ctx context.Context) {
	models, err := r.a.registry.ListModels(ctx)
	if err != nil {
		fmt.Fprintln(r.out, renderWarning(ollama.AsClientError(err).UserMessage()))
	}
	var current string
	r.loop.Do(func() { current = r.ctrl.Model() })

	if len(models) == 0 {
		fmt.Fprintln(r.out, dimStyle.Render("No models installed."))
		return
	}
	for _, m := range models {
		marker := "  "
		if m == current {
			marker = "* "
		}
		fmt.Fprintln(r.out, marker+m)
	}
}

func (r *repl) showHistory() {
	var turns []model.Turn
	r.loop.Do(func() { turns = r.ctrl.Snapshot() })
	if len(turns) == 0 {
		fmt.Fprintln(r.out, dimStyle.Render("No messages yet."))
		return
	}

	width := TerminalWidth()
	for _, t := range turns {
		label := t.Role.DisplayName() + ": "
		text := strings.ReplaceAll(t.Content, "\n", " ")
		text = util.TruncateWidth(text, width-util.Width(label))
		style := userStyle
		if t.Role == model.RoleAssistant {
			style = aiStyle
		}
		fmt.Fprintln(r.out, style.Render(label)+text)
	}
}
