package config

import (
	"strings"
	"testing"

	"github.com/andreapavoni/distillery/pkg/store"
)

func validTestConfig() *Config {
	cfg := &Config{
		DataRoot: "/srv/acme",
		Stores: []store.Config{
			{Name: "billing", App: "acme", Type: store.TypeSQLite,
				SQLite: store.SQLiteConfig{Path: "/tmp/billing.db"}},
			{Name: "accounts", App: "acme", Type: store.TypeSQLite,
				SQLite: store.SQLiteConfig{Path: "/tmp/accounts.db"}},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validTestConfig()); err != nil {
		t.Errorf("Expected valid config to pass validation, got error: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	cfg := validTestConfig()
	cfg.Logging.Level = "INVALID"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for invalid log level")
	}
	if !strings.Contains(err.Error(), "oneof") {
		t.Errorf("Expected 'oneof' validation error, got: %v", err)
	}
}

func TestValidate_InvalidLogFormat(t *testing.T) {
	cfg := validTestConfig()
	cfg.Logging.Format = "xml"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for invalid log format")
	}
}

func TestValidate_DuplicateNormalizedNames(t *testing.T) {
	cfg := validTestConfig()
	cfg.Stores[1].Name = "Billing"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for duplicate normalized store names")
	}
	if !strings.Contains(err.Error(), "normalize") {
		t.Errorf("Expected normalization conflict error, got: %v", err)
	}
}

func TestValidate_EmptyNormalizedName(t *testing.T) {
	cfg := validTestConfig()
	cfg.Stores[0].Name = "---"

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for name that normalizes to empty")
	}
}

func TestValidate_StoreBackendRules(t *testing.T) {
	cfg := validTestConfig()
	cfg.Stores[0].SQLite.Path = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Expected validation error for sqlite store without path")
	}
	if !strings.Contains(err.Error(), "sqlite path is required") {
		t.Errorf("Expected sqlite path error, got: %v", err)
	}
}

func TestValidate_PoolSizeBounds(t *testing.T) {
	cfg := validTestConfig()
	cfg.Stores[0].PoolSize = 64

	if err := Validate(cfg); err == nil {
		t.Fatal("Expected validation error for oversized pool")
	}
}
