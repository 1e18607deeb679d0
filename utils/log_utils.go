package utils

import (
	"io"
	"log/slog"

	"github.com/pterm/pterm"
)

// NewLogger returns a structured logger rendered by pterm into w.
func NewLogger(w io.Writer, debug bool) *slog.Logger {
	level := pterm.LogLevelInfo
	if debug {
		level = pterm.LogLevelDebug
	}
	logger := pterm.DefaultLogger.WithWriter(w).WithLevel(level)
	return slog.New(pterm.NewSlogHandler(logger))
}

// NewDiscardLogger is a logger that drops everything.
func NewDiscardLogger() *slog.Logger {
	return NewLogger(io.Discard, false)
}
