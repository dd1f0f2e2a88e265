package telemetry

import (
	"log/slog"
	"os"
)

// InitSlog configures the process-wide default logger. debug enables
// debug-level output (including per-request http logs).
func InitSlog(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}
