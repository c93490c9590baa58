package logging

import (
	"io"
	"log/slog"
)

// NewNopLogger returns a logger that discards every record.
func NewNopLogger() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
