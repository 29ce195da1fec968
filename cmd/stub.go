package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/lectern0/lectern/internal/config"
	"github.com/lectern0/lectern/internal/stubserver"
)

// runStub starts the local in-memory backend and blocks until
// interrupted.
func runStub(args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := newLogger(cfg, false)

	addr := stubserver.DefaultAddr
	if len(args) > 0 {
		addr = args[0]
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	fmt.Printf("stub backend listening on %s\n", addr)
	return stubserver.NewServer(logger).Run(ctx, addr)
}
