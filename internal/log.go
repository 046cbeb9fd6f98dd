package internal

import (
	"io"
	"log/slog"
)

// NewLogger writes text logs to w. Quiet by default so stdout/stderr only
// show the answer and errors.
func NewLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
