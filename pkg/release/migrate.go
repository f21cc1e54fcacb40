package release

import (
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	pgmigrate "github.com/golang-migrate/migrate/v4/database/postgres"
	sqlitemigrate "github.com/golang-migrate/migrate/v4/database/sqlite"
	_ "github.com/golang-migrate/migrate/v4/source/file" // file:// migration source

	"github.com/andreapavoni/distillery/internal/logger"
	"github.com/andreapavoni/distillery/pkg/store"
)

// migrationsTable is the engine's bookkeeping table, created in each
// store the first time migrations run against it.
const migrationsTable = "schema_migrations"

// databaseDriver builds the migration engine's database driver on top of
// the store's already-open pool.
func databaseDriver(conn Conn) (database.Driver, error) {
	switch conn.Store.Type {
	case store.TypePostgres:
		return pgmigrate.WithInstance(conn.DB, &pgmigrate.Config{
			MigrationsTable: migrationsTable,
			DatabaseName:    conn.Store.Postgres.Database,
		})
	case store.TypeSQLite:
		return sqlitemigrate.WithInstance(conn.DB, &sqlitemigrate.Config{
			MigrationsTable: migrationsTable,
		})
	default:
		return nil, fmt.Errorf("unsupported store type: %s", conn.Store.Type)
	}
}

// migratorFor builds a migration engine instance reading versioned SQL
// files from the store's derived migrations directory.
func migratorFor(conn Conn, dataRoot string) (*migrate.Migrate, error) {
	dir := conn.Store.MigrationsDir(dataRoot)

	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("migrations directory %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("migrations path %s is not a directory", dir)
	}

	driver, err := databaseDriver(conn)
	if err != nil {
		return nil, fmt.Errorf("failed to create database driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance("file://"+dir, string(conn.Store.Type), driver)
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate instance: %w", err)
	}

	return m, nil
}

// MigrateStore applies all pending up migrations for one store,
// synchronously. A clean re-run applies nothing; after a mid-run failure
// the engine's bookkeeping resumes from the first unapplied version.
func MigrateStore(conn Conn, dataRoot string) error {
	m, err := migratorFor(conn, dataRoot)
	if err != nil {
		return &MigrationError{Store: conn.Store.Name, Err: err}
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		merr := &MigrationError{Store: conn.Store.Name, Err: err}
		// The engine records the failing version before executing it.
		if version, dirty, verr := m.Version(); verr == nil {
			merr.Version = version
			merr.Dirty = dirty
		}
		return merr
	}

	version, dirty, verr := m.Version()
	switch {
	case errors.Is(verr, migrate.ErrNilVersion):
		logger.Info("no migrations to apply", "store", conn.Store.Name)
	case verr != nil:
		return &MigrationError{Store: conn.Store.Name, Err: fmt.Errorf("failed to read migration version: %w", verr)}
	case errors.Is(err, migrate.ErrNoChange):
		logger.Info("schema up to date", "store", conn.Store.Name, "version", version)
	default:
		logger.Info("migrations applied", "store", conn.Store.Name, "version", version)
	}

	if dirty {
		logger.Warn("schema is in dirty state, manual intervention may be required",
			"store", conn.Store.Name, "version", version)
	}

	return nil
}

// MigrateAll migrates every connected store in configured order.
// Migrations for store N+1 do not begin until store N's migrations have
// all committed; the first failure aborts the run with the remaining
// stores untouched.
func MigrateAll(conns []Conn, dataRoot string) error {
	for _, conn := range conns {
		logger.Info("running migrations for store", "store", conn.Store.Name)
		if err := MigrateStore(conn, dataRoot); err != nil {
			return err
		}
	}
	return nil
}

// StoreVersion reads the current schema version of one store from the
// engine's bookkeeping table, without touching the migration assets.
// Returns applied=false when no migration has ever run.
func StoreVersion(conn Conn) (version uint, dirty bool, applied bool, err error) {
	driver, err := databaseDriver(conn)
	if err != nil {
		return 0, false, false, err
	}

	v, dirty, err := driver.Version()
	if err != nil {
		return 0, false, false, err
	}
	if v == database.NilVersion {
		return 0, false, false, nil
	}
	return uint(v), dirty, true, nil
}
