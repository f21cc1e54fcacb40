package release

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/exec"

	"github.com/andreapavoni/distillery/internal/logger"
)

// Seeder populates one store through its open connection pool. Seeders
// registered with the controller take precedence over on-disk seed
// executables. Idempotence across invocations is the seeder author's
// responsibility; the runner executes a store's seed at most once per
// invocation and keeps no history.
type Seeder func(ctx context.Context, db *sql.DB) error

// SeedStore seeds one store. Resolution order:
//
//  1. a Seeder registered for the store name
//  2. the executable at the store's derived seed path
//  3. nothing to do, skipped silently
//
// The orchestrator never evaluates script contents itself: an on-disk
// seed must be a self-contained executable, which receives the store
// name, owning app, type, and DSN in its environment.
func SeedStore(ctx context.Context, conn Conn, dataRoot string, seeders map[string]Seeder) error {
	name := conn.Store.Name

	if fn, ok := seeders[name]; ok {
		logger.Info("seeding store", "store", name, "mechanism", "registered")
		if err := fn(ctx, conn.DB); err != nil {
			return &SeedError{Store: name, Err: err}
		}
		return nil
	}

	path := conn.Store.SeedPath(dataRoot)
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		logger.Debug("no seed asset, skipping", "store", name, "path", path)
		return nil
	}
	if err != nil {
		return &SeedError{Store: name, Err: err}
	}
	if info.IsDir() {
		return &SeedError{Store: name, Err: fmt.Errorf("seed path %s is a directory", path)}
	}
	if info.Mode()&0111 == 0 {
		return &SeedError{Store: name, Err: fmt.Errorf("seed script %s is not executable", path)}
	}

	logger.Info("seeding store", "store", name, "mechanism", "script", "path", path)

	cmd := exec.CommandContext(ctx, path)
	cmd.Env = append(os.Environ(),
		"DISTILLERY_STORE="+name,
		"DISTILLERY_STORE_APP="+conn.Store.App,
		"DISTILLERY_STORE_TYPE="+string(conn.Store.Type),
		"DISTILLERY_STORE_DSN="+conn.Store.DSN(),
	)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		return &SeedError{Store: name, Err: fmt.Errorf("seed script failed: %w", err)}
	}

	return nil
}

// SeedAll seeds every store in configured order. The first failure
// aborts the remaining stores: seeds may have ordering dependencies
// across stores, and continuing would mask partial application. Earlier
// stores' seeded data stays in place; the error names the failed store
// so the operator knows where the run stopped.
func SeedAll(ctx context.Context, conns []Conn, dataRoot string, seeders map[string]Seeder) error {
	for _, conn := range conns {
		if err := SeedStore(ctx, conn, dataRoot, seeders); err != nil {
			return err
		}
	}
	return nil
}
