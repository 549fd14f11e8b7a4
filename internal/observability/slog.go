// Package observability provides logging initialization.
package observability

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/stolasapp/scribe/internal/config"
)

// InitSlog initializes a logger with the given config. When running in a
// terminal, it uses a human-readable text format; otherwise it uses JSON for
// structured logging.
func InitSlog(cfg *config.Config) *slog.Logger {
	return NewLogger(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), cfg)
}

// NewLogger creates a logger writing to w, as text if human is set and as
// JSON otherwise.
func NewLogger(w io.Writer, human bool, cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		AddSource: cfg.DevMode,
		Level:     ParseLevel(cfg.LogLevel),
	}
	var handler slog.Handler
	if human {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel maps a configured level name to its [slog.Level]. Unknown names
// resolve to info.
func ParseLevel(lvl string) slog.Level {
	switch strings.ToLower(lvl) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
