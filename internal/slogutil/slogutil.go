// Package slogutil builds the structured loggers refscope writes to.
package slogutil

import (
	"io"
	"log/slog"
	"strings"
)

// silent is above every standard level.
const silent = slog.Level(100)

// NewLogger creates a logger writing to w. format is "json" or "text"; anything
// else falls back to text.
func NewLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// NewDiscardLogger creates a logger that discards all output.
func NewDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: silent}))
}

// LevelFromString converts a level name (debug, info, warn, error) to a slog.Level.
// Unrecognized names map to info.
func LevelFromString(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	case "off", "none", "quiet":
		return silent
	default:
		return slog.LevelInfo
	}
}

// LevelFromVerbosity maps repeated -v flags onto a level.
//   - quiet: nothing is logged
//   - 0: warn
//   - 1: info
//   - 2 or more: debug
func LevelFromVerbosity(verbosity int, quiet bool) slog.Level {
	if quiet {
		return silent
	}
	switch verbosity {
	case 0:
		return slog.LevelWarn
	case 1:
		return slog.LevelInfo
	default:
		return slog.LevelDebug
	}
}
