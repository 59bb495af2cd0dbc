package providers

import (
	"context"
	"os"
	"time"

	"github.com/samber/do/v2"
	"github.com/samber/oops"

	"github.com/notekeeper/notekeeper-server/internal/config"
	"github.com/notekeeper/notekeeper-server/internal/logger"
	"github.com/notekeeper/notekeeper-server/internal/store/sqlstore"
)

// storeOpenTimeout bounds the initial connect, migrate and ping.
const storeOpenTimeout = 30 * time.Second

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*sqlstore.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore opens the database and applies pending migrations.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if cfg.Database.Driver == sqlstore.DriverSQLite {
		if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
			return nil, oops.Code("DATA_DIR_FAILED").With("data_dir", cfg.DataDir).Wrap(err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), storeOpenTimeout)
	defer cancel()

	db, err := sqlstore.Open(ctx, sqlstore.Options{
		Driver:       cfg.Database.Driver,
		DSN:          cfg.Database.DSN,
		MaxOpenConns: cfg.Database.MaxOpenConns,
		Migrate:      true,
		Logger:       log.Logger,
	})
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "driver", db.Dialect())

	return &StoreHandle{Store: db}, nil
}
