// Package logger builds the process-wide slog logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Config selects the handler and the minimum level.
type Config struct {
	Level  slog.Level
	Format string // "json" or "text"
}

// ParseConfig turns LOG_LEVEL / LOG_FORMAT values into a Config. Unknown
// levels fall back to info.
func ParseConfig(level, format string) Config {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		lvl = slog.LevelInfo
	}
	return Config{Level: lvl, Format: strings.ToLower(strings.TrimSpace(format))}
}

// New creates a logger writing to stdout and installs it as the default.
func New(cfg Config) *slog.Logger {
	return newWithWriter(cfg, os.Stdout)
}

func newWithWriter(cfg Config, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.Level}

	var handler slog.Handler
	switch cfg.Format {
	case "text":
		handler = slog.NewTextHandler(w, opts)
	default:
		handler = slog.NewJSONHandler(w, opts)
	}

	l := slog.New(handler)
	slog.SetDefault(l)
	return l
}
