package logger

import (
	"log/slog"
	"os"
	"strings"

	"github.com/panasenco/plsql/internal/config"
)

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func Setup(cfg config.LoggerConfigs) error {
	var handlers []slog.Handler

	console := os.Stderr
	if strings.ToLower(cfg.ConsoleOutput) == "stdout" {
		console = os.Stdout
	}

	consoleOpts := &slog.HandlerOptions{Level: parseLevel(cfg.ConsoleLevel)}
	handlers = append(handlers, slog.NewTextHandler(console, consoleOpts))

	if cfg.FileOutput != "" {
		logFile, err := os.OpenFile(cfg.FileOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return err
		}

		fileOpts := &slog.HandlerOptions{
			Level: parseLevel(cfg.FileLevel), AddSource: true,
		}

		handlers = append(handlers, slog.NewTextHandler(logFile, fileOpts))
	}

	multi := NewMultiHandler(handlers...)

	slog.SetDefault(slog.New(multi))

	return nil
}
