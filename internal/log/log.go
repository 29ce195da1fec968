// Package log provides the logging infrastructure for lectern.
//
// This package provides:
//   - A type alias for *slog.Logger to use as DI dependency
//   - Factory functions to create configured loggers
//   - A Nop logger for testing
//
// Loggers are injected via constructors, not globals. Components add
// context with logger.With("component", ...).
package log

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is a type alias for *slog.Logger.
// Using the standard library type directly provides full compatibility
// with the slog ecosystem and access to With() for adding context.
type Logger = *slog.Logger

// Rotation limits for file output.
const (
	maxFileSizeMB = 20 // Rotate after 20 MB
	maxBackups    = 3  // Keep 3 rotated files
	maxAgeDays    = 14 // Delete rotated files after two weeks
)

// Config defines logger configuration options.
type Config struct {
	// Level sets the minimum log level. Default: slog.LevelInfo
	Level slog.Level

	// JSON enables JSON format output. Default: false (text format)
	JSON bool

	// AddSource adds source file information to log entries. Default: false
	AddSource bool

	// File, when non-empty, writes log output to the given path with
	// size-based rotation instead of stderr. The TUI occupies the
	// terminal, so interactive mode logs to a file by default.
	File string
}

// New creates a new logger with the given configuration.
// Output goes to os.Stderr unless cfg.File is set.
func New(cfg Config) Logger {
	if cfg.File != "" {
		return NewWithWriter(&lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxFileSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
		}, cfg)
	}
	return NewWithWriter(os.Stderr, cfg)
}

// NewWithWriter creates a new logger that writes to the specified writer.
// Useful for testing or custom output destinations.
func NewWithWriter(w io.Writer, cfg Config) Logger {
	opts := &slog.HandlerOptions{
		Level:     cfg.Level,
		AddSource: cfg.AddSource,
	}

	var handler slog.Handler
	if cfg.JSON {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(handler)
}

// NewNop creates a logger that discards all output.
//
// WARNING: Tests only. Production code should always use New() or
// NewWithWriter() so failures remain debuggable.
func NewNop() Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
