// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package chat provides the full-screen chat view.

The view is a Bubble Tea model wrapped around a session.Controller. The
controller's callbacks run inside Update: ProgramExecutor turns every
posted function into a message for the running program, so the transcript
is only ever touched from the Bubble Tea goroutine.

# Layout

  - Header with the selected model and key hints
  - Transcript viewport: welcome line, then one block per turn
  - Input box
  - Status bar: "Ready", "AI is thinking..." or a warning

# Keys

  - Enter submits the input line
  - Esc cancels the in-flight response
  - Tab / Shift+Tab cycle through the installed models
  - PgUp / PgDn scroll the transcript
  - Ctrl+C quits

# Usage

	exec := chat.NewProgramExecutor()
	m := chat.New(chat.Options{
		Theme:     styles.NewTheme(),
		Registry:  reg,
		Generator: client,
		Executor:  exec,
	})
	p := tea.NewProgram(m, tea.WithAltScreen())
	exec.Bind(p)
	_, err := p.Run()
*/
package chat
