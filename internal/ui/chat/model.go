// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/session"
	"github.com/LAGkitty/ollama-GUI/internal/ui/styles"
	"github.com/LAGkitty/ollama-GUI/internal/util"
)

// Status bar texts.
const (
	StatusReady    = "Ready"
	StatusThinking = "AI is thinking..."
	WelcomeMessage = "Welcome to Ollama Chat! Type a message to start chatting with the AI."
)

// ModelLister lists installed models. *registry.Registry satisfies it.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
	Default(models []string) string
}

// Options configures a Model.
type Options struct {
	Theme     *styles.Theme
	Registry  ModelLister
	Generator session.Generator
	Executor  session.Executor
	Logger    zerolog.Logger

	// Session options, e.g. session.WithModel for a preferred model.
	Session []session.Option
}

// =============================================================================
// TRANSCRIPT
// =============================================================================

type entryKind int

const (
	entryUser entryKind = iota
	entryAssistant
	entryError
	entryNotice
)

type entry struct {
	kind entryKind
	text string

	// partial is the text received before a failure.
	partial string
}

// transcript is shared by every copy of the Model. Controller callbacks
// write it from inside Update.
type transcript struct {
	entries   []entry
	partial   string
	streaming bool

	status     string
	statusKind styles.StatusKind

	// notice replaces status until it expires.
	notice     string
	noticeKind styles.StatusKind
	noticeID   int
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the chat view.
type Model struct {
	theme    *styles.Theme
	keys     KeyMap
	input    textinput.Model
	viewport viewport.Model
	spinner  spinner.Model

	ctrl     *session.Controller
	registry ModelLister
	log      zerolog.Logger

	tr *transcript

	models     []string
	modelsDone bool

	width  int
	height int
}

// New creates the chat view and its session controller.
func New(opts Options) Model {
	theme := opts.Theme
	if theme == nil {
		theme = styles.NewTheme()
	}

	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Type a message..."
	ti.CharLimit = 8192
	ti.Focus()

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 10,
	}

	tr := &transcript{status: StatusReady, statusKind: styles.StatusReady}

	cb := session.Callbacks{
		OnToken: func(partial string) {
			tr.partial = partial
		},
		OnComplete: func(final string) {
			tr.entries = append(tr.entries, entry{kind: entryAssistant, text: final})
			tr.partial = ""
		},
		OnError: func(err *ollama.ClientError, partial string) {
			msg := err.UserMessage()
			tr.entries = append(tr.entries, entry{kind: entryError, text: msg, partial: partial})
			tr.partial = ""
			tr.status, tr.statusKind = msg, styles.StatusError
		},
		OnState: func(from, to session.State) {
			tr.streaming = to.Busy()
			switch {
			case to.Busy():
				tr.status, tr.statusKind = StatusThinking, styles.StatusBusy
			case from == session.StateFailing:
				// Keep the error from OnError until the next submit.
			default:
				tr.status, tr.statusKind = StatusReady, styles.StatusReady
			}
		},
	}

	sessOpts := append([]session.Option{session.WithLogger(opts.Logger)}, opts.Session...)
	ctrl := session.New(opts.Generator, opts.Executor, cb, sessOpts...)

	return Model{
		theme:    theme,
		keys:     DefaultKeyMap(),
		input:    ti,
		viewport: vp,
		spinner:  sp,
		ctrl:     ctrl,
		registry: opts.Registry,
		log:      opts.Logger,
		tr:       tr,
	}
}

// Controller exposes the session for the caller's shutdown path.
func (m Model) Controller() *session.Controller {
	return m.ctrl
}

// =============================================================================
// BUBBLE TEA INTERFACE
// =============================================================================

// Init starts the cursor blink and the model listing.
func (m Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.fetchModels())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case runMsg:
		msg()
		m.refresh()
		return m, nil

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case tea.KeyMsg:
		return m.handleKey(msg)

	case modelsMsg:
		return m.handleModels(msg)

	case ConfigReloadedMsg:
		return m.handleConfigReloaded(msg)

	case clearNoticeMsg:
		if msg.id == m.tr.noticeID {
			m.tr.notice = ""
		}
		return m, nil

	case spinner.TickMsg:
		if !m.ctrl.State().Busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the chat.
func (m Model) View() string {
	return m.render()
}

// =============================================================================
// HANDLERS
// =============================================================================

func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.width = msg.Width
	m.height = msg.Height
	m.theme.SetSize(msg.Width, msg.Height)

	const (
		headerHeight = 2
		inputHeight  = 3
		statusHeight = 1
	)
	vh := msg.Height - headerHeight - inputHeight - statusHeight
	if vh < 3 {
		vh = 3
	}
	m.viewport.Width = msg.Width
	m.viewport.Height = vh
	m.input.Width = msg.Width - 6
	m.refresh()
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.ctrl.Close()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Cancel):
		if m.ctrl.Cancel() {
			m.tr.partial = ""
			m.tr.entries = append(m.tr.entries, entry{kind: entryNotice, text: "Response canceled."})
			m.refresh()
		}
		return m, nil

	case key.Matches(msg, m.keys.Submit):
		return m.submit()

	case key.Matches(msg, m.keys.NextModel):
		return m.cycleModel(1)

	case key.Matches(msg, m.keys.PrevModel):
		return m.cycleModel(-1)

	case key.Matches(msg, m.keys.PageUp), key.Matches(msg, m.keys.PageDown):
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submit() (tea.Model, tea.Cmd) {
	text := util.CleanInput(m.input.Value())
	if !m.ctrl.Submit(text) {
		return m, nil
	}
	m.tr.entries = append(m.tr.entries, entry{kind: entryUser, text: text})
	m.input.Reset()
	m.refresh()
	return m, m.spinner.Tick
}

func (m Model) cycleModel(step int) (tea.Model, tea.Cmd) {
	if len(m.models) < 2 {
		return m, nil
	}
	idx := indexOf(m.models, m.ctrl.Model())
	idx = (idx + step + len(m.models)) % len(m.models)
	m.ctrl.SetModel(m.models[idx])
	return m, m.setNotice(styles.StatusReady, "Model: "+m.models[idx])
}

func (m Model) fetchModels() tea.Cmd {
	reg := m.registry
	if reg == nil {
		return nil
	}
	return func() tea.Msg {
		models, err := reg.ListModels(context.Background())
		return modelsMsg{models: models, err: err}
	}
}

func (m Model) handleModels(msg modelsMsg) (tea.Model, tea.Cmd) {
	m.modelsDone = true
	models := msg.models

	current := m.ctrl.Model()
	if current == "" {
		current = m.registry.Default(models)
		m.ctrl.SetModel(current)
	}
	if indexOf(models, current) < 0 {
		models = append([]string{current}, models...)
	}
	m.models = models

	if msg.err != nil {
		text := msg.err.Error()
		var ce *ollama.ClientError
		if errors.As(msg.err, &ce) {
			text = ce.UserMessage()
		}
		m.tr.status, m.tr.statusKind = text, styles.StatusWarning
	}
	return m, nil
}

func (m Model) handleConfigReloaded(msg ConfigReloadedMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.log.Warn().Err(msg.Err).Msg("config reload rejected")
		return m, m.setNotice(styles.StatusWarning, "Config not reloaded: "+msg.Err.Error())
	}
	cfg := msg.Config
	m.ctrl.SetPacing(cfg.Generation.TokenPacing.Duration)
	if name := cfg.DefaultModel; name != "" && name != m.ctrl.Model() {
		m.ctrl.SetModel(name)
		if indexOf(m.models, name) < 0 {
			m.models = append([]string{name}, m.models...)
		}
	}
	m.log.Info().
		Str("default_model", cfg.DefaultModel).
		Dur("token_pacing", cfg.Generation.TokenPacing.Duration).
		Msg("config reloaded")
	return m, m.setNotice(styles.StatusReady, "Configuration reloaded")
}

// setNotice shows a transient status message.
func (m Model) setNotice(kind styles.StatusKind, text string) tea.Cmd {
	m.tr.noticeID++
	id := m.tr.noticeID
	m.tr.notice, m.tr.noticeKind = text, kind
	return tea.Tick(noticeTTL, func(time.Time) tea.Msg {
		return clearNoticeMsg{id: id}
	})
}

// refresh re-renders the transcript into the viewport and keeps the newest
// text visible.
func (m *Model) refresh() {
	m.viewport.SetContent(m.renderTranscript(m.viewport.Width))
	m.viewport.GotoBottom()
}

func indexOf(list []string, s string) int {
	for i, v := range list {
		if v == s {
			return i
		}
	}
	return -1
}
