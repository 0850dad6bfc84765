// Package logging configures the process-wide slog loggers shared by every
// module binary.
package logging

import (
	"fmt"
	"log/slog"
	"os"
)

var (
	Info  *slog.Logger
	Error *slog.Logger
)

// Init configures the global loggers for a module. levelName is one of
// "debug", "info", "warn", "error"; anything else falls back to info.
func Init(levelName string, moduleName string) {
	var level slog.Level
	switch levelName {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(handler).With("modulo", moduleName)

	Info = logger
	Error = logger
}

// Line emits one of the stable, scrape-friendly "[pid P] EVENT ..." lines
// the log contract requires, at info level, verbatim (no key/value pairs,
// since these are scraped by position, not by slog attribute).
func Line(format string, args ...any) {
	Info.Info(fmt.Sprintf(format, args...))
}
