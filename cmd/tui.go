package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "charm.land/bubbletea/v2"

	"github.com/lectern0/lectern/internal/tui"
)

// logLevel maps a config level name to slog.
func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// tuiLogFile resolves the log destination for interactive mode: the
// configured file, or ~/.lectern/lectern.log. The TUI occupies the
// terminal, so stderr is never used.
func tuiLogFile(configured string) string {
	if configured != "" {
		return configured
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lectern", "lectern.log")
}

// runTUI initializes and starts the interactive interface.
func runTUI() error {
	_, logger, svc, err := bootstrap(true)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	model, err := tui.New(ctx, svc, logger)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	program := tea.NewProgram(model, tea.WithContext(ctx))
	if _, err = program.Run(); err != nil {
		return fmt.Errorf("TUI exited: %w", err)
	}
	return nil
}
