package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Init installs the process-wide logger. Diagnostics go to stderr so they never
// interleave with the session's stdout tables. debug forces LevelDebug.
func Init(debug bool, level string) {
	InitTo(os.Stderr, debug, level)
}

// InitTo is Init with an explicit destination.
func InitTo(w io.Writer, debug bool, level string) {
	lvl := ParseLevel(level)
	if debug {
		lvl = slog.LevelDebug
	}
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: lvl,
	})
	slog.SetDefault(slog.New(handler))
}

// ParseLevel maps debug|info|warn|error to a slog level. Unknown values map to warn.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
