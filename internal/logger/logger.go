package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// New constructs a text logger tagged with service, honouring LOG_LEVEL.
func New(service string) *slog.Logger {
	return NewWithWriter(os.Stdout, service)
}

// NewWithWriter is New writing to w. The client logs to stderr so tables on
// stdout stay clean.
func NewWithWriter(w io.Writer, service string) *slog.Logger {
	level := ParseLevel(os.Getenv("LOG_LEVEL"))
	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(h).With("service", service)
}

// Discard returns a logger that drops everything.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps debug|warn|error to slog levels; anything else is info.
func ParseLevel(raw string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(raw)) {
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
