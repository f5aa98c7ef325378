// Package logger builds the *slog.Logger shared by the CLI and the server.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Structured log keys used across the module.
const (
	KeyRunID     = "run_id"
	KeyWatchlist = "watchlist"
	KeyIdentity  = "identity"
	KeyPage      = "page"
	KeyCategory  = "category"
	KeyError     = "error"
)

// New returns a logger writing to stderr. Level is one of debug, info, warn
// or error; format is text or json. Unknown values fall back to info/text.
func New(level, format string) *slog.Logger {
	return NewWithWriter(os.Stderr, level, format)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: ParseLevel(level)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// ParseLevel converts a level name to slog.Level, case-insensitively.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
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

// ForRun scopes l to one watchlist run.
func ForRun(l *slog.Logger, runID, watchlist string) *slog.Logger {
	if l == nil {
		l = slog.Default()
	}
	return l.With(KeyRunID, runID, KeyWatchlist, watchlist)
}
