package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/andreapavoni/distillery/pkg/release"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending migrations to every configured store",
	Long: `Apply all pending schema migrations to every configured store, in
configured order.

The run starts the configured runtime subsystems, connects every store,
then applies migrations store by store. Any failure aborts the whole run
with a distinct non-zero exit status; a store's migrations either all
commit or the run stops there. Re-running after success applies nothing.

Examples:
  # Migrate with default config
  distillery migrate

  # Migrate with custom config
  distillery migrate --config /etc/distillery/config.yaml`,
	RunE: runMigrate,
}

var migrateAndSeedCmd = &cobra.Command{
	Use:   "migrate-and-seed",
	Short: "Apply pending migrations, then seed every store",
	Long: `Apply all pending schema migrations, then run each store's optional
seed, in configured order.

Seeding starts only after every configured store has fully migrated. A
store with no seed asset is skipped silently. A seed failure aborts the
remaining stores' seeding; data seeded before the failure stays in place.

Examples:
  distillery migrate-and-seed
  distillery migrate-and-seed --config /etc/distillery/config.yaml`,
	RunE: runMigrateAndSeed,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	return release.New(cfg).Migrate(context.Background())
}

func runMigrateAndSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfigAndLogger()
	if err != nil {
		return err
	}

	return release.New(cfg).MigrateAndSeed(context.Background())
}
