package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/notekeeper/notekeeper-server/internal/di"
	"github.com/notekeeper/notekeeper-server/internal/logger"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server. Pending migrations are applied on startup and
expired password reset tokens are purged in the background.`,
		RunE: runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	injector := di.NewContainer(cfg, version)

	if err := di.Bootstrap(injector); err != nil {
		injector.Shutdown()
		return oops.Code("BOOTSTRAP_FAILED").Wrap(err)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	log.Info("Server running", "addr", cfg.Server.Addr())

	// Wait for shutdown signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server gracefully...")

	// The container shuts down the HTTP server, workers, and store in reverse order
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}

	log.Info("Shutdown complete")
	return nil
}
