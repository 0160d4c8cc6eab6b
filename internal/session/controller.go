// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/LAGkitty/ollama-GUI/internal/model"
	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/telemetry"
)

// Generator opens streamed generation requests. *ollama.Client satisfies it.
type Generator interface {
	OpenGenerate(ctx context.Context, req ollama.GenerateRequest) (io.ReadCloser, error)
	OpenChat(ctx context.Context, req ollama.ChatRequest) (io.ReadCloser, error)
}

// Callbacks receive session progress on the foreground context. Nil members
// are skipped.
type Callbacks struct {
	// OnToken gets the full text accumulated so far, once per increment.
	OnToken func(partial string)

	// OnComplete gets the final text after the assistant turn is logged.
	OnComplete func(final string)

	// OnError gets the classified failure and whatever text had arrived.
	// Nothing is logged for a failed turn.
	OnError func(err *ollama.ClientError, partial string)

	// OnState observes every state transition.
	OnState func(from, to State)
}

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller conducts a chat session, one streamed request per turn.
// It is not safe for concurrent use; see the package documentation.
type Controller struct {
	id   string
	gen  Generator
	exec Executor
	cb   Callbacks
	opts options
	log  zerolog.Logger

	conversation model.Log
	state        State
	model        string

	seq  uint64
	turn *turn
}

// New creates a Controller. exec is the foreground context callbacks run on.
func New(gen Generator, exec Executor, cb Callbacks, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	id := uuid.NewString()
	return &Controller{
		id:    id,
		gen:   gen,
		exec:  exec,
		cb:    cb,
		opts:  o,
		log:   o.logger.With().Str("session", id).Logger(),
		state: StateIdle,
		model: strings.TrimSpace(o.model),
	}
}

// ID returns the session identifier.
func (c *Controller) ID() string {
	return c.id
}

// State returns the current state.
func (c *Controller) State() State {
	return c.state
}

// Model returns the selected model.
func (c *Controller) Model() string {
	return c.model
}

// SetModel selects the model for subsequent requests. The name is not
// checked against the registry; an unknown model surfaces as an HTTP error
// from the server. A request already in flight keeps its model.
func (c *Controller) SetModel(name string) {
	name = strings.TrimSpace(name)
	if name == c.model {
		return
	}
	c.log.Info().Str("from", c.model).Str("model", name).Msg("model selected")
	c.model = name
}

// SetPacing changes the per-token delay for subsequent requests.
func (c *Controller) SetPacing(d time.Duration) {
	if d >= 0 {
		c.opts.pacing = d
	}
}

// Snapshot returns a copy of the conversation so far.
func (c *Controller) Snapshot() []model.Turn {
	return c.conversation.Snapshot()
}

// Submit starts a turn for text. It returns false without side effects when
// the trimmed text is empty or a request is already in flight.
func (c *Controller) Submit(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" {
		c.opts.metrics.TurnRejected()
		c.log.Debug().Msg("submit rejected: empty input")
		return false
	}
	if c.state != StateIdle {
		c.opts.metrics.TurnRejected()
		c.log.Debug().Stringer("state", c.state).Msg("submit rejected: request in flight")
		return false
	}

	// A user turn always follows either nothing, an assistant turn or an
	// unanswered user turn, so Append cannot fail here.
	_ = c.conversation.Append(model.NewUserTurn(text))

	open := c.buildRequest(text)

	var (
		ctx    context.Context
		cancel context.CancelFunc
	)
	if c.opts.timeout > 0 {
		ctx, cancel = context.WithTimeout(context.Background(), c.opts.timeout)
	} else {
		ctx, cancel = context.WithCancel(context.Background())
	}

	c.seq++
	t := &turn{
		seq:       c.seq,
		requestID: uuid.NewString(),
		cancel:    cancel,
		stats:     telemetry.NewStreamStats(),
	}
	t.log = c.log.With().Str("request", t.requestID).Str("model", c.model).Logger()
	c.turn = t

	c.setState(StateSending)
	c.opts.metrics.TurnStarted()
	t.log.Info().Int("chars", len(text)).Str("history", string(c.opts.history)).Msg("request started")

	w := &worker{
		seq:    t.seq,
		exec:   c.exec,
		open:   open,
		pacing: c.opts.pacing,
		ctrl:   c,
	}
	go w.run(ctx)
	return true
}

// Cancel aborts the in-flight request. The controller returns to Idle at
// once, nothing is logged and no callback other than OnState fires. It
// returns false when there was nothing to cancel.
func (c *Controller) Cancel() bool {
	t := c.turn
	if t == nil {
		return false
	}
	t.cancel()
	c.turn = nil

	c.opts.metrics.TurnCanceled()
	t.log.Info().Int("chars", t.acc.Len()).Msg("request canceled")
	c.setState(StateIdle)
	return true
}

// Close cancels any in-flight request.
func (c *Controller) Close() {
	c.Cancel()
}

// buildRequest captures everything the worker needs on the foreground, so
// the worker never reads controller state.
func (c *Controller) buildRequest(text string) opener {
	opts := &ollama.Options{Temperature: c.opts.temperature}

	if c.opts.history == HistoryReplay {
		turns := c.conversation.Snapshot()
		messages := make([]ollama.Message, 0, len(turns)+1)
		if c.opts.systemPrompt != "" {
			messages = append(messages, ollama.Message{Role: "system", Content: c.opts.systemPrompt})
		}
		for _, t := range turns {
			messages = append(messages, ollama.Message{Role: t.Role.String(), Content: t.Content})
		}
		req := ollama.ChatRequest{
			Model:    c.model,
			Messages: messages,
			Stream:   true,
			Options:  opts,
		}
		return func(ctx context.Context) (io.ReadCloser, error) {
			return c.gen.OpenChat(ctx, req)
		}
	}

	req := ollama.GenerateRequest{
		Model:   c.model,
		Prompt:  text,
		System:  c.opts.systemPrompt,
		Stream:  true,
		Options: opts,
	}
	return func(ctx context.Context) (io.ReadCloser, error) {
		return c.gen.OpenGenerate(ctx, req)
	}
}

// =============================================================================
// FOREGROUND HANDLERS
// =============================================================================

// current returns the active turn if seq still identifies it. Events from
// a canceled turn are dropped here.
func (c *Controller) current(seq uint64) *turn {
	if c.turn == nil || c.turn.seq != seq {
		return nil
	}
	return c.turn
}

func (c *Controller) handleResponse(seq uint64) {
	if c.current(seq) == nil {
		return
	}
	c.setState(StateStreaming)
}

func (c *Controller) handleToken(seq uint64, token string) {
	t := c.current(seq)
	if t == nil {
		return
	}
	t.acc.WriteString(token)
	t.stats.RecordToken(len(token))
	c.opts.metrics.TokenDelivered()

	if c.cb.OnToken != nil {
		c.cb.OnToken(t.acc.String())
	}
}

func (c *Controller) handleDone(seq uint64, gs *ollama.GenerationStats) {
	t := c.current(seq)
	if t == nil {
		return
	}
	c.setState(StateCompleting)

	final := t.acc.String()
	if err := c.conversation.Append(model.NewAssistantTurn(final)); err != nil {
		t.log.Error().Err(err).Msg("could not record assistant turn")
	}

	t.stats.Finish()
	if gs != nil {
		t.stats.PromptTokens = gs.PromptTokens
		t.stats.OutputTokens = gs.OutputTokens
		t.stats.EvalDuration = gs.EvalDuration
	}
	c.opts.metrics.TurnCompleted(t.stats)
	t.log.Info().
		Int("chars", len(final)).
		Int("increments", t.stats.Increments).
		Dur("ttft", t.stats.TTFT()).
		Dur("elapsed", t.stats.Duration()).
		Msg("request completed")

	if c.cb.OnComplete != nil {
		c.cb.OnComplete(final)
	}
	c.finish(t)
}

func (c *Controller) handleError(seq uint64, err *ollama.ClientError) {
	t := c.current(seq)
	if t == nil {
		return
	}

	// Only our own Cancel cancels the context, and it clears the turn
	// first. Anything arriving here as Canceled is treated the same way.
	if err.Type == ollama.ErrTypeCanceled {
		c.Cancel()
		return
	}

	c.setState(StateFailing)
	partial := t.acc.String()
	t.stats.Finish()
	c.opts.metrics.TurnFailed(err.Type.String())
	t.log.Warn().
		Err(err).
		Stringer("kind", err.Type).
		Int("status", err.Status).
		Int("chars", len(partial)).
		Msg("request failed")

	if c.cb.OnError != nil {
		c.cb.OnError(err, partial)
	}
	c.finish(t)
}

// finish releases the turn and returns to Idle.
func (c *Controller) finish(t *turn) {
	t.cancel()
	c.turn = nil
	c.setState(StateIdle)
}

func (c *Controller) setState(to State) {
	from := c.state
	if from == to {
		return
	}
	c.state = to
	if c.cb.OnState != nil {
		c.cb.OnState(from, to)
	}
}
