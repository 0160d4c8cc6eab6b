// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
)

// =============================================================================
// EXECUTOR
// =============================================================================

// Executor runs closures on the foreground context, in the order posted.
// Post must not block for long and must be safe to call from any goroutine.
type Executor interface {
	Post(fn func())
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(fn func())

// Post calls f(fn).
func (f ExecutorFunc) Post(fn func()) {
	f(fn)
}

// =============================================================================
// LOOP
// =============================================================================

// Loop is a single-goroutine Executor. Posted closures queue without bound
// so a stream worker never stalls on a busy foreground.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	closed bool

	wake chan struct{}
	done chan struct{}
}

// NewLoop creates a Loop. Call Run to start draining it.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
}

// Post queues fn. Closures posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Do runs fn on the loop and waits for it to return. It must not be called
// from the loop goroutine itself. Returns false if the loop stopped first.
func (l *Loop) Do(fn func()) bool {
	ran := make(chan struct{})
	l.Post(func() {
		defer close(ran)
		fn()
	})
	select {
	case <-ran:
		return true
	case <-l.done:
		// Run may have executed fn right before stopping.
		select {
		case <-ran:
			return true
		default:
			return false
		}
	}
}

// Run drains the queue until ctx is done or Close is called.
func (l *Loop) Run(ctx context.Context) {
	defer l.stop()
	for {
		for {
			fn, ok := l.pop()
			if !ok {
				break
			}
			fn()
		}

		select {
		case <-ctx.Done():
			return
		case <-l.done:
			return
		case <-l.wake:
		}
	}
}

// Close stops the loop. Pending closures are discarded.
func (l *Loop) Close() {
	l.stop()
}

// Done is closed once the loop has stopped.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func (l *Loop) pop() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed || len(l.queue) == 0 {
		return nil, false
	}
	fn := l.queue[0]
	l.queue[0] = nil
	l.queue = l.queue[1:]
	return fn, true
}

func (l *Loop) stop() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	l.queue = nil
	close(l.done)
}
