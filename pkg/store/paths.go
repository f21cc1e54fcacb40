package store

import (
	"path/filepath"
	"strings"
)

// NormalizeName converts a store name into its on-disk directory form:
// lowercase, with every run of non-alphanumeric characters collapsed to a
// single underscore and leading/trailing underscores trimmed.
//
//	"Billing"      -> "billing"
//	"Read Replica" -> "read_replica"
//	"billing-v2"   -> "billing_v2"
func NormalizeName(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingSep := false
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(r)
		default:
			pendingSep = true
		}
	}

	return b.String()
}

// AssetRoot returns the directory under which this store's migration and
// seed assets live: <dataRoot>/<app>/<normalized name>.
func (c *Config) AssetRoot(dataRoot string) string {
	return filepath.Join(dataRoot, c.App, NormalizeName(c.Name))
}

// MigrationsDir returns the directory holding the store's versioned
// migration files.
func (c *Config) MigrationsDir(dataRoot string) string {
	return filepath.Join(c.AssetRoot(dataRoot), "migrations")
}

// SeedPath returns the path of the store's optional seed executable.
func (c *Config) SeedPath(dataRoot string) string {
	return filepath.Join(c.AssetRoot(dataRoot), "seeds", "seed")
}
