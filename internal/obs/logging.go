// Package obs contains observability utilities such as logging.
package obs

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger returns a JSON logger for production and a text logger for
// development, both at info level.
func NewLogger(development bool) *slog.Logger {
	return newLogger(os.Stdout, development)
}

func newLogger(w io.Writer, development bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if development {
		opts.Level = slog.LevelDebug
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

// Discard returns a logger that drops everything. Used by tests.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
