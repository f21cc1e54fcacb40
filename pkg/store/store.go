// Package store describes the logical data stores the task runner operates
// on and knows how to open a connection pool to each of them.
//
// A store is identified by its name and owning application. Connection
// pools opened here are sized for serial migration work, not production
// traffic: migrations run one statement at a time, so a single connection
// per store is the default.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver for database/sql
	_ "modernc.org/sqlite"             // sqlite driver for database/sql
)

// Type defines the supported database backends.
type Type string

const (
	// TypeSQLite uses SQLite (single-node, default).
	TypeSQLite Type = "sqlite"

	// TypePostgres uses PostgreSQL.
	TypePostgres Type = "postgres"
)

// driverName maps a store type to its registered database/sql driver.
func (t Type) driverName() string {
	switch t {
	case TypePostgres:
		return "pgx"
	case TypeSQLite:
		return "sqlite"
	default:
		return ""
	}
}

// SQLiteConfig contains SQLite-specific configuration.
type SQLiteConfig struct {
	// Path is the path to the SQLite database file.
	Path string `mapstructure:"path" yaml:"path"`
}

// PostgresConfig contains PostgreSQL-specific configuration.
type PostgresConfig struct {
	Host        string `mapstructure:"host" yaml:"host"`
	Port        int    `mapstructure:"port" yaml:"port"`
	Database    string `mapstructure:"database" yaml:"database"`
	User        string `mapstructure:"user" yaml:"user"`
	Password    string `mapstructure:"password" yaml:"password,omitempty"`
	SSLMode     string `mapstructure:"ssl_mode" yaml:"ssl_mode,omitempty"`     // disable, require, verify-ca, verify-full
	SSLRootCert string `mapstructure:"ssl_root_cert" yaml:"ssl_root_cert,omitempty"`
}

// DSN returns the PostgreSQL connection string.
func (c *PostgresConfig) DSN() string {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s",
		c.Host, c.Port, c.User, c.Password, c.Database)

	if c.SSLMode != "" {
		dsn += fmt.Sprintf(" sslmode=%s", c.SSLMode)
	}
	if c.SSLRootCert != "" {
		dsn += fmt.Sprintf(" sslrootcert=%s", c.SSLRootCert)
	}

	return dsn
}

// Config identifies one logical data store.
//
// Configs are built once from static application configuration, are
// immutable for the process lifetime, and are passed read-only into every
// component that needs them.
type Config struct {
	// Name is the logical store name, e.g. "billing". Must be unique
	// across the configured store set after normalization.
	Name string `mapstructure:"name" validate:"required" yaml:"name"`

	// App is the owning application or module name. Together with the
	// normalized store name it determines where the store's migration
	// and seed assets live.
	App string `mapstructure:"app" validate:"required" yaml:"app"`

	// Type selects the database backend.
	Type Type `mapstructure:"type" validate:"required,oneof=sqlite postgres" yaml:"type"`

	// PoolSize caps open connections for migration work. Default: 1.
	PoolSize int `mapstructure:"pool_size" validate:"omitempty,min=1,max=16" yaml:"pool_size,omitempty"`

	SQLite   SQLiteConfig   `mapstructure:"sqlite" yaml:"sqlite,omitempty"`
	Postgres PostgresConfig `mapstructure:"postgres" yaml:"postgres,omitempty"`
}

// ApplyDefaults fills in missing configuration with default values.
func (c *Config) ApplyDefaults() {
	if c.Type == "" {
		c.Type = TypeSQLite
	}
	if c.PoolSize == 0 {
		c.PoolSize = 1
	}
	if c.Type == TypePostgres {
		if c.Postgres.Port == 0 {
			c.Postgres.Port = 5432
		}
		if c.Postgres.SSLMode == "" {
			c.Postgres.SSLMode = "disable"
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("store name is required")
	}
	if c.App == "" {
		return fmt.Errorf("store %q: owning app is required", c.Name)
	}
	switch c.Type {
	case TypeSQLite:
		if c.SQLite.Path == "" {
			return fmt.Errorf("store %q: sqlite path is required", c.Name)
		}
	case TypePostgres:
		if c.Postgres.Host == "" {
			return fmt.Errorf("store %q: postgres host is required", c.Name)
		}
		if c.Postgres.Database == "" {
			return fmt.Errorf("store %q: postgres database is required", c.Name)
		}
		if c.Postgres.User == "" {
			return fmt.Errorf("store %q: postgres user is required", c.Name)
		}
	default:
		return fmt.Errorf("store %q: unsupported type: %s", c.Name, c.Type)
	}
	return nil
}

// DSN returns the connection string for the configured backend. For
// SQLite this is the database file path plus pragmas for lock tolerance.
func (c *Config) DSN() string {
	if c.Type == TypePostgres {
		return c.Postgres.DSN()
	}
	// busy_timeout keeps migration statements from failing if another
	// local process briefly holds the file lock.
	return c.SQLite.Path + "?_pragma=busy_timeout(5000)"
}

// DriverName returns the registered database/sql driver for this store.
func (c *Config) DriverName() string {
	return c.Type.driverName()
}

// Open establishes the store's connection pool and verifies it with a
// ping. The pool is capped at PoolSize open connections.
func (c *Config) Open(ctx context.Context) (*sql.DB, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.Type == TypeSQLite {
		// Ensure parent directory exists for SQLite
		if err := os.MkdirAll(filepath.Dir(c.SQLite.Path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(c.DriverName(), c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(c.PoolSize)
	db.SetMaxIdleConns(c.PoolSize)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}
