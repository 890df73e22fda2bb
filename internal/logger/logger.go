// Package logger is a thin wrapper around slog giving the application one
// logger type with a fatal exit path.
package logger

import (
	"log/slog"
	"os"
)

// Logger embeds slog.Logger, so all leveled methods are available directly.
type Logger struct {
	*slog.Logger
}

// New creates a Logger writing text records to stdout. level follows slog
// numbering: -4 debug, 0 info, 4 warn, 8 error.
func New(level int) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.Level(level),
	})

	return &Logger{Logger: slog.New(handler)}
}

// Fatal logs at error level and terminates the process.
func (l *Logger) Fatal(msg string, args ...any) {
	l.Logger.Error(msg, args...)
	os.Exit(1)
}
