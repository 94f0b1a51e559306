package logging

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	slogmulti "github.com/samber/slog-multi"

	"github.com/Chinedu-E/mlb-odds/internal/pkg/config"
)

// Setup configures the global logger. Console output goes to stderr in the
// configured format; when cfg.File is set, JSON records are also appended
// there. The returned cleanup function closes the log file.
func Setup(cfg *config.LoggingConfig, serviceName string) (*slog.Logger, func() error) {
	level := parseLevel(cfg.Level)

	var console slog.Handler
	switch cfg.Format {
	case "json":
		console = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	default:
		console = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: time.TimeOnly,
		})
	}

	handler := console
	cleanup := func() error { return nil }

	if cfg.File != "" {
		file, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			slog.Warn("Failed to open log file, using console only", "file", cfg.File, "error", err)
		} else {
			fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{Level: level})
			handler = slogmulti.Fanout(console, fileHandler)
			cleanup = file.Close
		}
	}

	logger := slog.New(handler).With("service", serviceName)
	slog.SetDefault(logger)

	return logger, cleanup
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
