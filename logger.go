package matrixgo

import (
	"log/slog"
	"os"
)

// Logger wraps slog.Logger with matrixgo-specific field helpers.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler. If handler is nil, a
// text handler to stderr at Info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
}

// NoopLogger creates a Logger that discards all output.
func NoopLogger() *Logger {
	return &Logger{Logger: slog.New(slog.DiscardHandler)}
}

// WithMatrix tags log records with a matrix name.
func (l *Logger) WithMatrix(name string) *Logger {
	return &Logger{Logger: l.Logger.With("matrix", name)}
}

// WithShape tags log records with a matrix shape.
func (l *Logger) WithShape(shape []int) *Logger {
	return &Logger{Logger: l.Logger.With("shape", shape)}
}
