package main

import (
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/notekeeper/notekeeper-server/internal/config"
)

// Global flags available to all subcommands.
var (
	configFile string
	envFile    string
)

// NewRootCmd creates the root command for the NoteKeeper CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notekeeper",
		Short: "NoteKeeper - a personal note-taking server",
		Long: `NoteKeeper serves a REST API for organizing notes into books and chapters,
with password reset, tags, and substring search.

Running notekeeper without a subcommand starts the server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "config file path (YAML)")
	flags.StringVar(&envFile, "env-file", ".env", "dotenv file path; ignored when missing")
	flags.String("env", "", "environment: development, staging, or production")
	flags.String("log-level", "", "log level: debug, info, warn, or error")
	flags.Int("port", 0, "HTTP listen port")
	flags.String("data-dir", "", "directory for the SQLite database and signing key")
	flags.String("database-driver", "", "database driver: sqlite or postgres")
	flags.String("database-dsn", "", "database connection string")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewPurgeResetTokensCmd())

	return cmd
}

// loadConfig resolves configuration for cmd, honoring flags the user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		ConfigFile: configFile,
		EnvFile:    envFile,
		Flags:      cmd.Flags(),
	})
	if err != nil {
		return nil, oops.Code("CONFIG_INVALID").With("config_file", configFile).Wrap(err)
	}
	return cfg, nil
}
