package sbn

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with sbn-specific field helpers so that log
// lines across the package use consistent field names.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. A nil handler falls
// back to a text handler on stderr at info level.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON-formatted logs to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NewTextLogger creates a Logger that writes human-readable logs to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return &Logger{Logger: slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))}
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.Level(1000), // Unreachable level
	})
	return &Logger{Logger: slog.New(handler)}
}

// WithInstance adds the instance name field.
func (l *Logger) WithInstance(name string) *Logger {
	return &Logger{Logger: l.Logger.With("instance", name)}
}

// WithTaxa adds the taxon count field.
func (l *Logger) WithTaxa(n int) *Logger {
	return &Logger{Logger: l.Logger.With("taxa", n)}
}

// WithTopologies adds the distinct topology count field.
func (l *Logger) WithTopologies(n int) *Logger {
	return &Logger{Logger: l.Logger.With("topologies", n)}
}
