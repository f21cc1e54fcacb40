package config

import (
	"strings"

	"github.com/andreapavoni/distillery/pkg/store"
)

// DefaultSubsystems is the runtime subsystem list used when the config
// does not specify one. The order is load-bearing: crypto before network
// before database drivers.
var DefaultSubsystems = []string{"tls", "network", "drivers"}

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// Called after loading configuration from file and environment variables.
// Zero values (0, "", nil) are replaced with defaults; explicit values are
// preserved.
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyRuntimeDefaults(&cfg.Runtime)
	for i := range cfg.Stores {
		cfg.Stores[i].ApplyDefaults()
	}
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyRuntimeDefaults sets the default subsystem list.
func applyRuntimeDefaults(cfg *RuntimeConfig) {
	if len(cfg.Subsystems) == 0 {
		cfg.Subsystems = append([]string(nil), DefaultSubsystems...)
	}
}

// GetDefaultConfig returns a configuration with a single sample sqlite
// store. Used by `distillery init` to write a starting point.
func GetDefaultConfig() *Config {
	cfg := &Config{
		DataRoot: "/var/lib/distillery",
		Stores: []store.Config{
			{
				Name: "primary",
				App:  "myapp",
				Type: store.TypeSQLite,
				SQLite: store.SQLiteConfig{
					Path: "/var/lib/distillery/myapp/primary.db",
				},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}
