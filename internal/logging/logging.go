// Package logging sets up the azb logger. In TUI mode everything goes to a
// rotated file; the terminal belongs to bubbletea.
package logging

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"gopkg.in/natefinch/lumberjack.v2"
)

var fileWriter *lumberjack.Logger

// Setup builds the application logger. With isTUI set, log records are only
// written to logFile; otherwise they also go to stderr (colored when it is
// a terminal).
func Setup(logFile, level string, isTUI bool) (*slog.Logger, error) {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	if dir := filepath.Dir(logFile); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	fileWriter = &lumberjack.Logger{
		Filename:   logFile,
		MaxSize:    10, // MB
		MaxBackups: 3,
		MaxAge:     28, // days
	}

	fileHandler := tint.NewHandler(fileWriter, &tint.Options{
		Level:      lvl,
		TimeFormat: time.RFC3339,
		NoColor:    true,
	})

	if isTUI {
		return slog.New(fileHandler), nil
	}

	noColor := !isatty.IsTerminal(os.Stderr.Fd()) || os.Getenv("NO_COLOR") != ""
	stderrHandler := tint.NewHandler(os.Stderr, &tint.Options{
		Level:      lvl,
		TimeFormat: time.TimeOnly,
		NoColor:    noColor,
	})

	return slog.New(&multiHandler{handlers: []slog.Handler{fileHandler, stderrHandler}}), nil
}

// Discard returns a logger that drops everything, for when file logging
// cannot be set up.
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// Close flushes and closes the log file writer.
func Close() error {
	if fileWriter != nil {
		return fileWriter.Close()
	}
	return nil
}
