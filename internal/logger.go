package internal

import (
	"io"
	"log/slog"
	"time"
)

// NewLogger builds the process logger from an already validated Config
// (NewConfig normalizes Env and LogLevel before we get here). Production
// emits JSON with RFC3339Nano timestamps for the log pipeline; dev keeps the
// readable text handler. Every record carries the service name and
// environment so engine logs can be separated from gateway callback noise.
func NewLogger(w io.Writer, cfg *Config) *slog.Logger {
	level := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	var h slog.Handler
	if cfg.Env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
			ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
				if a.Key == slog.TimeKey {
					return slog.String("time", a.Value.Time().Format(time.RFC3339Nano))
				}
				return a
			},
		})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	}

	return slog.New(h).With(
		slog.String("service", "vidar"),
		slog.String("env", cfg.Env),
	)
}
