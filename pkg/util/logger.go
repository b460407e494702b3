package util

import (
	"io"
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Development gets human-readable text
// at debug level; every other environment gets JSON at info level.
func NewLogger(env, service string) *slog.Logger {
	return newLogger(os.Stdout, env).With("service", service)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if env == "development" {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}
