// Package log wraps log/slog with a component attribute so every line can
// be traced back to the subsystem that emitted it.
package log

import (
	"log/slog"
	"os"
)

// Logger is a slog.Logger that stamps each record with a component name.
type Logger struct {
	*slog.Logger
	handler   slog.Handler
	component string
}

// New creates a text logger writing to stdout at the given level.
func New(component string, level slog.Level) *Logger {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	return &Logger{
		Logger:    slog.New(handler).With("component", component),
		handler:   handler,
		component: component,
	}
}

// WithComponent returns a sibling logger stamped with a different component
// name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		Logger:    slog.New(l.handler).With("component", component),
		handler:   l.handler,
		component: component,
	}
}

// Component returns the logger's component name.
func (l *Logger) Component() string {
	return l.component
}

// SetDefault installs l as the process-wide default logger.
func SetDefault(l *Logger) {
	slog.SetDefault(l.Logger)
}
