package logger

import (
	"log/slog"
	"os"
)

// New returns a structured JSON logger using slog.
// Constructed once in main and passed explicitly into component constructors;
// there is no ambient global logger.
func New() *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}
	handler := slog.NewJSONHandler(os.Stdout, opts)
	return slog.New(handler)
}
