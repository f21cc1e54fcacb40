//go:build integration

package integration

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/andreapavoni/distillery/pkg/config"
	"github.com/andreapavoni/distillery/pkg/release"
	"github.com/andreapavoni/distillery/pkg/store"
)

// startPostgres brings up a disposable PostgreSQL container and returns
// the matching store configuration.
func startPostgres(t *testing.T) store.PostgresConfig {
	t.Helper()
	ctx := context.Background()

	ctr, err := tcpostgres.Run(ctx, "postgres:16-alpine",
		tcpostgres.WithDatabase("billing"),
		tcpostgres.WithUsername("acme"),
		tcpostgres.WithPassword("secret"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ctr.Terminate(ctx) })

	host, err := ctr.Host(ctx)
	require.NoError(t, err)
	port, err := ctr.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	return store.PostgresConfig{
		Host:     host,
		Port:     port.Int(),
		Database: "billing",
		User:     "acme",
		Password: "secret",
		SSLMode:  "disable",
	}
}

func writeMigration(t *testing.T, dir string, version int, sql string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0755))
	path := filepath.Join(dir, fmt.Sprintf("%d_migration.up.sql", version))
	require.NoError(t, os.WriteFile(path, []byte(sql), 0644))
}

// TestMigrate_PostgresAndSQLite runs a full migrate-and-verify pass
// against a real postgres store and a sqlite store side by side.
func TestMigrate_PostgresAndSQLite(t *testing.T) {
	pg := startPostgres(t)
	root := t.TempDir()

	cfg := &config.Config{
		DataRoot: filepath.Join(root, "assets"),
		Stores: []store.Config{
			{Name: "billing", App: "acme", Type: store.TypePostgres, Postgres: pg},
			{Name: "accounts", App: "acme", Type: store.TypeSQLite,
				SQLite: store.SQLiteConfig{Path: filepath.Join(root, "accounts.db")}},
		},
	}
	config.ApplyDefaults(cfg)
	require.NoError(t, config.Validate(cfg))

	for _, name := range []string{"billing", "accounts"} {
		var sc *store.Config
		for i := range cfg.Stores {
			if cfg.Stores[i].Name == name {
				sc = &cfg.Stores[i]
			}
		}
		dir := sc.MigrationsDir(cfg.DataRoot)
		for v := 1; v <= 3; v++ {
			writeMigration(t, dir, v,
				fmt.Sprintf("CREATE TABLE %s_t%d (id INTEGER PRIMARY KEY);", name, v))
		}
	}

	ctx := context.Background()

	ctrl := release.New(cfg)
	require.NoError(t, ctrl.Migrate(ctx))
	assert.Equal(t, release.StateTerminated, ctrl.State())

	statuses, err := release.Status(ctx, cfg)
	require.NoError(t, err)
	require.Len(t, statuses, 2)
	for _, s := range statuses {
		assert.True(t, s.Applied)
		assert.False(t, s.Dirty)
		assert.Equal(t, uint(3), s.Version)
	}

	// Re-run: idempotent, nothing re-applied.
	require.NoError(t, release.New(cfg).Migrate(ctx))
}

// TestMigrate_PostgresFailureIsResumable verifies the engine's dirty
// state after a failed migration and the orchestrator's non-zero code.
func TestMigrate_PostgresFailureIsResumable(t *testing.T) {
	pg := startPostgres(t)
	root := t.TempDir()

	cfg := &config.Config{
		DataRoot: filepath.Join(root, "assets"),
		Stores: []store.Config{
			{Name: "billing", App: "acme", Type: store.TypePostgres, Postgres: pg},
		},
	}
	config.ApplyDefaults(cfg)
	require.NoError(t, config.Validate(cfg))

	dir := cfg.Stores[0].MigrationsDir(cfg.DataRoot)
	writeMigration(t, dir, 1, "CREATE TABLE billing_t1 (id INTEGER PRIMARY KEY);")
	writeMigration(t, dir, 2, "INSERT INTO missing_table VALUES (1);")

	ctx := context.Background()
	err := release.New(cfg).Migrate(ctx)
	require.Error(t, err)
	assert.Equal(t, release.ExitMigration, release.ExitCode(err))

	var merr *release.MigrationError
	require.ErrorAs(t, err, &merr)
	assert.Equal(t, "billing", merr.Store)
	assert.Equal(t, uint(2), merr.Version)

	statuses, serr := release.Status(ctx, cfg)
	require.NoError(t, serr)
	require.Len(t, statuses, 1)
	assert.True(t, statuses[0].Dirty)
}
