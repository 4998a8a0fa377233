// Package logging provides the structured logger shared by the store, the
// HTTP app and the CLI.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Logger is the structured logging interface accepted across the module.
type Logger interface {
	Debug(msg string, fields ...any)
	Info(msg string, fields ...any)
	Warn(msg string, fields ...any)
	Error(msg string, fields ...any)
}

type slogLogger struct {
	logger *slog.Logger
}

// New creates a logger writing to stderr. Format "text" selects the text
// handler; anything else emits JSON.
func New(level, format string) Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "text") {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return &slogLogger{logger: slog.New(handler)}
}

// Nop returns a logger that discards everything.
func Nop() Logger {
	return &slogLogger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// ParseLevel maps a level name onto slog levels, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func (l *slogLogger) Debug(msg string, fields ...any) { l.logger.Debug(msg, fields...) }
func (l *slogLogger) Info(msg string, fields ...any)  { l.logger.Info(msg, fields...) }
func (l *slogLogger) Warn(msg string, fields ...any)  { l.logger.Warn(msg, fields...) }
func (l *slogLogger) Error(msg string, fields ...any) { l.logger.Error(msg, fields...) }
