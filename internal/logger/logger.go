package logger

import (
	"io"
	"log/slog"
	"os"
)

func ParseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Setup installs a JSON logger on stdout as the slog default, tagged with the service name.
func Setup(level, service string) {
	slog.SetDefault(New(os.Stdout, level, service))
}

func New(w io.Writer, level, service string) *slog.Logger {
	log := slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: ParseLevel(level)}))
	if service != "" {
		log = log.With(slog.String("service", service))
	}
	return log
}
