package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/internal/log"
)

func main() {
	logger := log.NewLoggerWithWriter(os.Stderr)

	config.InitializeEnvFile(logger) // Load envs early for CLI consistency

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{Logger: logger})
	if err := runner.Run(ctx, os.Args); err != nil {
		logger.Error("Command failed", "error", err.Error())
		stop()
		os.Exit(1)
	}
}
