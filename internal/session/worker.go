// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/panics"
	"golang.org/x/time/rate"

	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/telemetry"
)

// opener issues the HTTP request for one turn.
type opener func(ctx context.Context) (io.ReadCloser, error)

// turn is the foreground bookkeeping of the in-flight request.
type turn struct {
	seq       uint64
	requestID string
	cancel    context.CancelFunc
	acc       strings.Builder
	stats     *telemetry.StreamStats
	log       zerolog.Logger
}

// =============================================================================
// WORKER
// =============================================================================

// worker performs the network side of one turn. It owns nothing the
// controller reads; every result crosses to the foreground via exec.Post,
// tagged with seq so a canceled turn's leftovers are ignored.
type worker struct {
	seq    uint64
	exec   Executor
	open   opener
	pacing time.Duration

	// ctrl is only dereferenced inside posted closures.
	ctrl *Controller
}

func (w *worker) run(ctx context.Context) {
	var pc panics.Catcher
	pc.Try(func() { w.stream(ctx) })
	if r := pc.Recovered(); r != nil {
		w.fail(&ollama.ClientError{
			Type:    ollama.ErrTypeUnknown,
			Message: "stream worker panicked",
			Cause:   r.AsError(),
		})
	}
}

func (w *worker) stream(ctx context.Context) {
	body, err := w.open(ctx)
	if err != nil {
		w.fail(ollama.AsClientError(err))
		return
	}
	defer body.Close()

	w.post(func(c *Controller) { c.handleResponse(w.seq) })

	var limiter *rate.Limiter
	if w.pacing > 0 {
		limiter = rate.NewLimiter(rate.Every(w.pacing), 1)
	}

	dec := ollama.NewDecoderContext(ctx, body)
	for {
		inc, err := dec.Next()
		if err != nil {
			// io.EOF only follows a done increment, which returns below.
			w.fail(ollama.AsClientError(err))
			return
		}

		if inc.Done {
			stats := inc.Stats
			w.post(func(c *Controller) { c.handleDone(w.seq, stats) })
			return
		}

		if limiter != nil {
			if err := limiter.Wait(ctx); err != nil {
				w.fail(pacingError(ctx, err))
				return
			}
		}

		token := inc.Token
		w.post(func(c *Controller) { c.handleToken(w.seq, token) })
	}
}

func (w *worker) fail(err *ollama.ClientError) {
	w.post(func(c *Controller) { c.handleError(w.seq, err) })
}

func (w *worker) post(fn func(c *Controller)) {
	c := w.ctrl
	w.exec.Post(func() { fn(c) })
}

// pacingError classifies an aborted limiter wait. Wait also fails early,
// with ctx still live, when the delay would overrun the deadline.
func pacingError(ctx context.Context, err error) *ollama.ClientError {
	if errors.Is(ctx.Err(), context.Canceled) {
		return &ollama.ClientError{Type: ollama.ErrTypeCanceled, Message: ollama.ErrCanceled.Message, Cause: err}
	}
	return &ollama.ClientError{Type: ollama.ErrTypeTimeout, Message: ollama.ErrTimeout.Message, Cause: err}
}
