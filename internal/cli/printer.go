// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"

	"github.com/LAGkitty/ollama-GUI/internal/ollama"
	"github.com/LAGkitty/ollama-GUI/internal/session"
)

// printer streams one turn at a time to a line-oriented writer. Its
// callbacks run on the session loop; idle is signaled once per finished
// turn, however it ended.
type printer struct {
	out   io.Writer
	label string

	printed int
	failure *ollama.ClientError
	idle    chan struct{}
}

func newPrinter(out io.Writer, label string) *printer {
	return &printer{out: out, label: label, idle: make(chan struct{}, 1)}
}

func (p *printer) callbacks() session.Callbacks {
	return session.Callbacks{
		OnToken: func(partial string) {
			io.WriteString(p.out, partial[p.printed:])
			p.printed = len(partial)
		},
		OnComplete: func(final string) {
			io.WriteString(p.out, final[p.printed:])
			fmt.Fprintln(p.out)
		},
		OnError: func(err *ollama.ClientError, partial string) {
			p.failure = err
			if p.printed > 0 {
				fmt.Fprintln(p.out)
			}
		},
		OnState: func(from, to session.State) {
			switch to {
			case session.StateSending:
				p.printed = 0
				p.failure = nil
				if p.label != "" {
					io.WriteString(p.out, p.label)
				}
			case session.StateIdle:
				select {
				case p.idle <- struct{}{}:
				default:
				}
			}
		},
	}
}
