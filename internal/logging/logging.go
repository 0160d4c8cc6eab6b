// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the process logger.
//
// The full-screen UI owns the terminal, so it logs to a file only. The
// line-mode front ends may additionally mirror warnings to stderr.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Options selects the log destinations.
type Options struct {
	// Level is a zerolog level name. Empty means info.
	Level string

	// File receives JSON lines when set. Parent directories are created.
	File string

	// Console receives human-readable lines at ConsoleLevel and above when
	// set.
	Console      io.Writer
	ConsoleLevel zerolog.Level
}

// Logger is a zerolog.Logger plus the file it may own.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New builds a Logger. With neither File nor Console set it discards
// everything.
func New(opts Options) (*Logger, error) {
	level := zerolog.InfoLevel
	if s := strings.TrimSpace(opts.Level); s != "" {
		l, err := zerolog.ParseLevel(strings.ToLower(s))
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", opts.Level, err)
		}
		level = l
	}

	var (
		writers []io.Writer
		file    *os.File
	)

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		file = f
		writers = append(writers, f)
	}

	if opts.Console != nil {
		cw := zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.Kitchen}
		writers = append(writers, &zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: cw},
			Level:  opts.ConsoleLevel,
		})
	}

	if len(writers) == 0 {
		return &Logger{Logger: zerolog.Nop()}, nil
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()
	return &Logger{Logger: zl, file: file}, nil
}

// Close closes the log file, if any.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
