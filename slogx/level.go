package slogx

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// LevelNames are the level names accepted by [ParseLevel].
var LevelNames = []string{"debug", "info", "warn", "error"}

// ParseLevel converts a level name, ignoring case, into a [slog.Level].
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level '%s'", name)
	}
}

// NewTextLogger creates a logger writing text records at or above level to out, with duplicate keys removed.
func NewTextLogger(out io.Writer, level slog.Leveler) *slog.Logger {
	return slog.New(NewDedupeHandler(slog.NewTextHandler(out, &slog.HandlerOptions{
		Level: level,
	})))
}
