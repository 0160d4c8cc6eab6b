// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestLoop_RunsInOrder(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	var got []int
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			i := i
			loop.Post(func() { got = append(got, i) })
		}
	}()
	wg.Wait()

	var n int
	loop.Do(func() { n = len(got) })
	if n != 100 {
		t.Fatalf("ran %d closures, want 100", n)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("got[%d] = %d, closures ran out of order", i, v)
		}
	}
}

func TestLoop_DoAfterStop(t *testing.T) {
	loop := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	go loop.Run(ctx)
	cancel()

	select {
	case <-loop.Done():
	case <-time.After(time.Second):
		t.Fatal("loop did not stop")
	}

	if loop.Do(func() {}) {
		t.Error("Do on a stopped loop should report false")
	}
	// Post after stop is a no-op rather than a panic.
	loop.Post(func() { t.Error("closure ran after stop") })
}

func TestLoop_Close(t *testing.T) {
	loop := NewLoop()
	done := make(chan struct{})
	go func() {
		loop.Run(context.Background())
		close(done)
	}()

	loop.Close()
	loop.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after Close")
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		s    State
		want string
		busy bool
	}{
		{StateIdle, "idle", false},
		{StateSending, "sending", true},
		{StateStreaming, "streaming", true},
		{StateCompleting, "completing", true},
		{StateFailing, "failing", true},
	}
	for _, tt := range tests {
		if got := tt.s.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
		if tt.s.Busy() != tt.busy {
			t.Errorf("%s.Busy() = %v", tt.s, tt.s.Busy())
		}
	}
}

func TestParseHistoryMode(t *testing.T) {
	tests := []struct {
		in   string
		want HistoryMode
		ok   bool
	}{
		{"", HistorySingle, true},
		{"single", HistorySingle, true},
		{"replay", HistoryReplay, true},
		{"everything", HistorySingle, false},
	}
	for _, tt := range tests {
		got, ok := ParseHistoryMode(tt.in)
		if got != tt.want || ok != tt.ok {
			t.Errorf("ParseHistoryMode(%q) = %q, %v; want %q, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
