// Package cmd provides CLI commands for lectern.
//
// Commands:
//   - tui: Interactive stage-driven terminal interface (default)
//   - upload: Upload a document and open a session
//   - generate: Generate study notes for a session
//   - chat: Ask one question in a session
//   - stub: Run the local in-memory backend
//
// Signal handling and graceful shutdown are implemented for all
// commands via context cancellation.
package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/lectern0/lectern/internal/backend"
	"github.com/lectern0/lectern/internal/config"
	"github.com/lectern0/lectern/internal/log"
	"github.com/lectern0/lectern/internal/notes"
	"github.com/lectern0/lectern/internal/session"
)

// Execute is the main entry point for the lectern CLI application.
func Execute() error {
	// A .env file is optional; missing is not an error.
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		return runTUI()
	}

	switch os.Args[1] {
	case "tui":
		return runTUI()
	case "upload":
		return runUpload(os.Args[2:])
	case "generate":
		return runGenerate(os.Args[2:])
	case "chat":
		return runChat(os.Args[2:])
	case "stub":
		return runStub(os.Args[2:])
	case "version", "--version", "-v":
		runVersion()
		return nil
	case "help", "--help", "-h":
		runHelp()
		return nil
	default:
		return fmt.Errorf("unknown command: %s", os.Args[1])
	}
}

// bootstrap loads configuration and builds the logger, backend client,
// and stage orchestrator shared by every command. Interactive mode
// redirects logging away from the terminal.
func bootstrap(interactive bool) (*config.Config, log.Logger, *notes.Service, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(cfg, interactive)

	client, err := newClient(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	sctx := session.New()
	sctx.Username = cfg.Username
	sctx.Params = cfg.Hyperparameters()

	svc, err := notes.NewService(notes.ServiceConfig{
		Client:    client,
		Logger:    logger,
		OutputDir: cfg.OutputDir,
		Context:   sctx,
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, svc, nil
}

// newLogger builds the logger from config. Interactive mode must not
// write to the terminal the TUI occupies, so tuiLogFile overrides.
func newLogger(cfg *config.Config, interactive bool) log.Logger {
	file := cfg.LogFile
	if interactive {
		file = tuiLogFile(cfg.LogFile)
	}
	return log.New(log.Config{
		Level: logLevel(cfg.LogLevel),
		JSON:  cfg.LogJSON,
		File:  file,
	})
}

// newClient selects the backend implementation: the fixture client when
// LECTERN_OFFLINE is set, the HTTP client otherwise.
func newClient(cfg *config.Config, logger log.Logger) (backend.Client, error) {
	if os.Getenv("LECTERN_OFFLINE") != "" {
		logger.Info("offline mode, using fixture backend")
		return backend.NewStubClient(), nil
	}
	return backend.NewHTTPClient(cfg.BackendURL, cfg.Timeout(), logger)
}

// runHelp displays the help message.
func runHelp() {
	fmt.Println("lectern - study notes from your lecture transcripts")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  lectern [tui]                          Start the interactive interface")
	fmt.Println("  lectern upload <file> [username]       Upload a document, open a session")
	fmt.Println("  lectern generate <session> [format]    Generate notes for a session")
	fmt.Println("  lectern chat <session> <question>      Ask one question in a session")
	fmt.Println("  lectern stub [addr]                    Run the local stub backend (default: 127.0.0.1:8000)")
	fmt.Println("  lectern --version                      Show version information")
	fmt.Println("  lectern --help                         Show this help")
	fmt.Println()
	fmt.Println("TUI shortcuts:")
	fmt.Println("  Tab                Switch input fields")
	fmt.Println("  Enter              Submit the current stage")
	fmt.Println("  Esc                Go back / cancel")
	fmt.Println("  Ctrl+D, Ctrl+C     Exit")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  LECTERN_BACKEND_URL  Backend base URL (default: http://localhost:8000)")
	fmt.Println("  LECTERN_USERNAME     Default username for uploads")
	fmt.Println("  LECTERN_OFFLINE      Use the built-in fixture backend")
	fmt.Println("  LECTERN_TIMEOUT_SECONDS  Per-request backend timeout (default: 120)")
	fmt.Println("  LECTERN_LOG_LEVEL    debug | info | warn | error")
}
