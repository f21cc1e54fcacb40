package release

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeSeedScript installs an executable seed script for a store.
func writeSeedScript(t *testing.T, conn Conn, dataRoot, body string) string {
	t.Helper()
	path := conn.Store.SeedPath(dataRoot)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func seedTestConn(t *testing.T) (Conn, string) {
	t.Helper()
	cfg := newTestConfig(t, "billing")
	writeStandardMigrations(t, cfg, "billing")
	require.NoError(t, New(cfg).Migrate(context.Background()))
	return openStore(t, cfg, "billing"), cfg.DataRoot
}

func TestSeedStore_RegisteredTakesPrecedence(t *testing.T) {
	conn, dataRoot := seedTestConn(t)

	// Script would fail loudly if executed.
	writeSeedScript(t, conn, dataRoot, "exit 7")

	ran := false
	seeders := map[string]Seeder{
		"billing": func(ctx context.Context, db *sql.DB) error {
			ran = true
			return nil
		},
	}

	require.NoError(t, SeedStore(context.Background(), conn, dataRoot, seeders))
	assert.True(t, ran)
}

func TestSeedStore_ScriptEnvironment(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script seeds are not supported on windows")
	}
	conn, dataRoot := seedTestConn(t)

	out := filepath.Join(t.TempDir(), "env.txt")
	writeSeedScript(t, conn, dataRoot,
		fmt.Sprintf(`printf '%%s %%s %%s' "$DISTILLERY_STORE" "$DISTILLERY_STORE_APP" "$DISTILLERY_STORE_TYPE" > %q`, out))

	require.NoError(t, SeedStore(context.Background(), conn, dataRoot, nil))

	got, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "billing acme sqlite", string(got))
}

func TestSeedStore_MissingScriptSkips(t *testing.T) {
	conn, dataRoot := seedTestConn(t)
	require.NoError(t, SeedStore(context.Background(), conn, dataRoot, nil))
}

func TestSeedStore_ScriptFailure(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script seeds are not supported on windows")
	}
	conn, dataRoot := seedTestConn(t)
	writeSeedScript(t, conn, dataRoot, "exit 3")

	err := SeedStore(context.Background(), conn, dataRoot, nil)
	require.Error(t, err)

	var serr *SeedError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, "billing", serr.Store)
	assert.Equal(t, ExitSeed, ExitCode(err))
}

func TestSeedStore_NonExecutableScript(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("file modes are not meaningful on windows")
	}
	conn, dataRoot := seedTestConn(t)
	path := conn.Store.SeedPath(dataRoot)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("SELECT 1;"), 0644))

	err := SeedStore(context.Background(), conn, dataRoot, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not executable")
}

func TestSeedAll_OrderAndAbort(t *testing.T) {
	cfg := newTestConfig(t, "billing", "accounts", "ledger")
	for _, name := range []string{"billing", "accounts", "ledger"} {
		writeStandardMigrations(t, cfg, name)
	}
	require.NoError(t, New(cfg).Migrate(context.Background()))

	conns, err := ConnectAll(context.Background(), cfg.Stores)
	require.NoError(t, err)
	defer CloseAll(conns)

	var ran []string
	seeders := map[string]Seeder{
		"billing": func(ctx context.Context, db *sql.DB) error {
			ran = append(ran, "billing")
			return nil
		},
		"accounts": func(ctx context.Context, db *sql.DB) error {
			ran = append(ran, "accounts")
			return fmt.Errorf("fixture conflict")
		},
		"ledger": func(ctx context.Context, db *sql.DB) error {
			ran = append(ran, "ledger")
			return nil
		},
	}

	err = SeedAll(context.Background(), conns, cfg.DataRoot, seeders)
	require.Error(t, err)
	assert.Equal(t, []string{"billing", "accounts"}, ran)
}
