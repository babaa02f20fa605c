package logging

import (
	"log/slog"
	"os"
	"strings"
)

// appName tags every log line so aggregated streams from the api and
// worker processes group under one application.
const appName = "odner"

// NewJSONLogger builds the process-wide JSON logger. Both binaries call
// it once and install the result as the slog default.
func NewJSONLogger(service, level string) *slog.Logger {
	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLevel(level),
	})
	return slog.New(handler).With("app", appName, "service", service)
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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
