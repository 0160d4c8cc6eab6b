// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"
)

// runMsg carries a posted function into Update.
type runMsg func()

// ProgramExecutor is a session.Executor backed by a running tea.Program.
// Functions posted before Bind are held and delivered once bound.
type ProgramExecutor struct {
	mu      sync.Mutex
	program *tea.Program
	pending []func()
}

// NewProgramExecutor creates an unbound executor.
func NewProgramExecutor() *ProgramExecutor {
	return &ProgramExecutor{}
}

// Bind attaches the program. Held functions are delivered from a separate
// goroutine since Send blocks until Run starts reading.
func (e *ProgramExecutor) Bind(p *tea.Program) {
	e.mu.Lock()
	e.program = p
	pending := e.pending
	e.pending = nil
	e.mu.Unlock()

	if len(pending) == 0 {
		return
	}
	go func() {
		for _, fn := range pending {
			p.Send(runMsg(fn))
		}
	}()
}

// Post delivers fn to the program's Update. It blocks until the program
// accepts the message and returns immediately once the program has exited.
// It must not be called from inside Update.
func (e *ProgramExecutor) Post(fn func()) {
	e.mu.Lock()
	p := e.program
	if p == nil {
		e.pending = append(e.pending, fn)
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()
	p.Send(runMsg(fn))
}
