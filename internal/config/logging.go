package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	slogmulti "github.com/samber/slog-multi"

	"github.com/verte-zerg/passintel/internal/logging"
)

// SetupLogger creates a logger writing JSON to logFile and, when console is
// non-nil, text to console. Secrets are masked before any sink sees them.
// The returned cleanup closes the log file.
func SetupLogger(logFile string, level slog.Level, console io.Writer) (*slog.Logger, func() error) {
	opts := &slog.HandlerOptions{Level: level}
	handlers := make([]slog.Handler, 0, 2)
	if console != nil {
		handlers = append(handlers, slog.NewTextHandler(console, opts))
	}

	cleanup := func() error { return nil }
	file, err := openLogFile(logFile)
	if err != nil {
		if console == nil {
			// Nothing may write to the terminal while the TUI owns it.
			return slog.New(logging.NewRedactHandler(slog.NewTextHandler(io.Discard, opts))), cleanup
		}
		slog.New(handlers[0]).Warn("failed to open log file, using stderr only", "error", err, "file", logFile)
	} else {
		handlers = append(handlers, slog.NewJSONHandler(file, opts))
		cleanup = file.Close
	}

	return slog.New(logging.NewRedactHandler(slogmulti.Fanout(handlers...))), cleanup
}

// SetupLoggerWithWriters creates a logger with custom writers (for testing).
func SetupLoggerWithWriters(console, file io.Writer, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	return slog.New(logging.NewRedactHandler(slogmulti.Fanout(
		slog.NewTextHandler(console, opts),
		slog.NewJSONHandler(file, opts),
	)))
}

func openLogFile(path string) (*os.File, error) {
	if path == "" {
		return nil, os.ErrInvalid
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
}

// ParseLogLevel maps a level name to slog.Level, defaulting to Info.
func ParseLogLevel(s string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
