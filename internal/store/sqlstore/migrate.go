package sqlstore

import (
	"embed"
	"errors"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	// Register golang-migrate database drivers.
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/samber/oops"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// Migrate applies all pending migrations for driver against dsn.
// golang-migrate opens its own connection, so this is safe to call before
// or after Open.
func Migrate(driver, dsn string) error {
	m, err := newMigrate(driver, dsn)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return oops.Code("MIGRATION_UP_FAILED").With("driver", driver).Wrap(err)
	}
	return nil
}

// MigrationVersion returns the applied schema version and dirty flag.
// An unmigrated database reports version 0.
func MigrationVersion(driver, dsn string) (uint, bool, error) {
	m, err := newMigrate(driver, dsn)
	if err != nil {
		return 0, false, err
	}
	defer m.Close()

	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, oops.Code("MIGRATION_VERSION_FAILED").With("driver", driver).Wrap(err)
	}
	return version, dirty, nil
}

func newMigrate(driver, dsn string) (*migrate.Migrate, error) {
	d, err := dialectFor(driver)
	if err != nil {
		return nil, oops.Code("MIGRATION_INIT_FAILED").Wrap(err)
	}

	source, err := iofs.New(migrationsFS, "migrations/"+d.name)
	if err != nil {
		return nil, oops.Code("MIGRATION_SOURCE_FAILED").With("driver", d.name).Wrap(err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(d.name, dsn))
	if err != nil {
		_ = source.Close()
		return nil, oops.Code("MIGRATION_INIT_FAILED").With("driver", d.name).Wrap(err)
	}
	return m, nil
}

// migrateURL maps a store DSN to the URL scheme golang-migrate expects.
func migrateURL(driver, dsn string) string {
	if driver == DriverPostgres {
		if rest, ok := strings.CutPrefix(dsn, "postgres://"); ok {
			return "pgx5://" + rest
		}
		if rest, ok := strings.CutPrefix(dsn, "postgresql://"); ok {
			return "pgx5://" + rest
		}
		return dsn
	}
	return "sqlite://" + strings.TrimPrefix(dsn, "file:")
}
