package config

import (
	"log/slog"
	"os"
)

var logLevels = map[string]slog.Level{
	"debug": slog.LevelDebug,
	"info":  slog.LevelInfo,
	"warn":  slog.LevelWarn,
	"error": slog.LevelError,
}

// NewLogger builds the application logger from GO_ENV and LOG_LEVEL.
// Production emits JSON for log aggregation; everything else emits text.
// Unknown LOG_LEVEL values fall back to info.
func NewLogger() *slog.Logger {
	level, ok := logLevels[os.Getenv("LOG_LEVEL")]
	if !ok {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if os.Getenv("GO_ENV") == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
