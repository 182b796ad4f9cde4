package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"deepseek-gql/internal/redact"
)

// Setup configures the global slog.Default() logger writing to stderr.
// format: "text", "json" or "auto" (text on a terminal, json otherwise).
// level: "debug", "info", "warn", "error".
// When redactor is non-nil, secrets are scrubbed from every attribute.
func Setup(format, level string, redactor *redact.Redactor) *slog.Logger {
	logger := New(os.Stderr, resolveFormat(format, isTerminal(os.Stderr)), level, redactor)
	slog.SetDefault(logger)
	return logger
}

// New builds a logger writing to w without touching the global default.
func New(w io.Writer, format, level string, redactor *redact.Redactor) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}
	if redactor != nil {
		opts.ReplaceAttr = redactor.ReplaceAttr
	}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

func resolveFormat(format string, tty bool) string {
	f := strings.ToLower(strings.TrimSpace(format))
	if f == "" || f == "auto" {
		if tty {
			return "text"
		}
		return "json"
	}
	return f
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// ParseLevel converts a level string to slog.Level.
// Defaults to slog.LevelInfo for unrecognized values.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Discard returns a *slog.Logger that discards all output.
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}
