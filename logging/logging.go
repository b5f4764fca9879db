// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

const (
	EnvLocal = "local"

	FormatText = "text"
	FormatJSON = "json"
)

// New builds the process logger. An empty format picks text when stdout is
// a terminal and JSON otherwise. The local env logs at debug level.
func New(env, format string) *slog.Logger {
	return NewWithWriter(os.Stdout, env, format, isatty.IsTerminal(os.Stdout.Fd()))
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, env, format string, terminal bool) *slog.Logger {
	level := slog.LevelInfo
	if env == EnvLocal {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	switch strings.ToLower(format) {
	case FormatJSON:
		return slog.New(slog.NewJSONHandler(w, opts))
	case FormatText:
		return slog.New(slog.NewTextHandler(w, opts))
	}

	if terminal {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Resolve returns logger, or slog.Default() when it is nil.
func Resolve(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
