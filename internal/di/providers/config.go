// Package providers contains dependency injection providers for the NoteKeeper server.
package providers

import (
	"github.com/samber/do/v2"

	"github.com/notekeeper/notekeeper-server/internal/config"
	"github.com/notekeeper/notekeeper-server/internal/logger"
)

// BuildInfo carries values stamped at build time.
type BuildInfo struct {
	Version string
}

// ProvideLogger provides the structured logger.
func ProvideLogger(i do.Injector) (*logger.Logger, error) {
	cfg := do.MustInvoke[*config.Config](i)
	build := do.MustInvoke[BuildInfo](i)

	log := logger.New(logger.Config{
		Format:      cfg.Logger.Format,
		Level:       logger.ParseLevel(cfg.Logger.Level),
		AddSource:   cfg.App.IsDevelopment(),
		Environment: cfg.App.Environment,
	})

	log.Info("Starting NoteKeeper Server",
		"version", build.Version,
		"environment", cfg.App.Environment,
		"log_level", cfg.Logger.Level,
		"data_dir", cfg.DataDir,
		"database_driver", cfg.Database.Driver,
	)

	return log, nil
}
