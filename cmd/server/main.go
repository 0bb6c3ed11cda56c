package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/akeren/launchwait/config"
	"github.com/akeren/launchwait/domain"
	"github.com/akeren/launchwait/internal/log"
	"github.com/akeren/launchwait/pkg/utils"
)

const defaultShutdownTimeout = 30 * time.Second

func main() {
	logger := log.NewLoggerWithJSONOutput()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, logger, os.Args[1:]); err != nil {
		logger.Error("Server exited with error", "error", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *log.Logger, args []string) error {
	autoMigrate := hasAutoMigrateFlag(args)
	logger.Info("Starting launchwait server", "auto_migrate", autoMigrate)

	appConfig, err := config.LoadApplicationConfiguration(logger, autoMigrate)
	if err != nil {
		return err
	}
	defer appConfig.Cleanup()

	domain.SetupCoreDomain(appConfig)

	serverErr := make(chan error, 1)
	go func() { serverErr <- appConfig.RouterService.RunHTTPServer() }()

	select {
	case err := <-serverErr:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutdown signal received")
	timeout := utils.GetEnvDurationOrDefault("SHUTDOWN_TIMEOUT", defaultShutdownTimeout)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := appConfig.RouterService.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
		return err
	}
	logger.Info("HTTP server shut down gracefully")
	return nil
}

// hasAutoMigrateFlag accepts --auto-migrate or -m. AutoMigrate is refused
// outside dev-like APP_ENV values; use the CLI migrate command instead.
func hasAutoMigrateFlag(args []string) bool {
	for _, arg := range args {
		switch strings.ToLower(arg) {
		case "--auto-migrate", "-m":
			return true
		}
	}
	return false
}
