package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/notekeeper/notekeeper-server/internal/config"
	"github.com/notekeeper/notekeeper-server/internal/store/sqlstore"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long:  `Run all pending database migrations against the configured database.`,
		RunE:  runMigrate,
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show the applied schema version",
		RunE:  runMigrateStatus,
	})
	return cmd
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := ensureDataDir(cfg); err != nil {
		return err
	}

	cmd.Println("Running migrations...")
	if err := sqlstore.Migrate(cfg.Database.Driver, cfg.Database.DSN); err != nil {
		return oops.Code("MIGRATION_FAILED").With("operation", "run migrations").Wrap(err)
	}

	return printVersion(cmd, cfg)
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := ensureDataDir(cfg); err != nil {
		return err
	}
	return printVersion(cmd, cfg)
}

func printVersion(cmd *cobra.Command, cfg *config.Config) error {
	v, dirty, err := sqlstore.MigrationVersion(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		return oops.Code("MIGRATION_STATUS_FAILED").With("operation", "read schema version").Wrap(err)
	}
	if dirty {
		cmd.Printf("Schema version %d (dirty)\n", v)
		return nil
	}
	cmd.Printf("Schema version %d\n", v)
	return nil
}

// ensureDataDir creates the SQLite data directory so the database file can be opened.
func ensureDataDir(cfg *config.Config) error {
	if cfg.Database.Driver != sqlstore.DriverSQLite {
		return nil
	}
	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		return oops.Code("DATA_DIR_FAILED").With("data_dir", cfg.DataDir).Wrap(err)
	}
	return nil
}
