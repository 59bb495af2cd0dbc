package main

import (
	"github.com/samber/do/v2"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/notekeeper/notekeeper-server/internal/di"
	"github.com/notekeeper/notekeeper-server/internal/service"
)

// NewPurgeResetTokensCmd creates the purge-reset-tokens subcommand.
func NewPurgeResetTokensCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "purge-reset-tokens",
		Short: "Delete expired password reset tokens",
		Long: `Delete password reset tokens whose expiry has passed. Used tokens are kept
until they expire. The server runs the same purge periodically.`,
		RunE: runPurgeResetTokens,
	}
}

func runPurgeResetTokens(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	injector := di.NewContainer(cfg, version)
	defer injector.Shutdown()

	resets, err := do.Invoke[*service.PasswordResetService](injector)
	if err != nil {
		return oops.Code("BOOTSTRAP_FAILED").Wrap(err)
	}

	n, err := resets.PurgeExpired(cmd.Context())
	if err != nil {
		return oops.Code("PURGE_FAILED").With("operation", "purge reset tokens").Wrap(err)
	}

	cmd.Printf("Purged %d expired reset tokens\n", n)
	return nil
}
