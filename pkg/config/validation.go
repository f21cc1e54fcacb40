package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/andreapavoni/distillery/pkg/store"
)

// Validate checks the configuration against the struct validation tags
// plus the cross-field rules the tags cannot express.
func Validate(cfg *Config) error {
	validate := validator.New()

	if err := validate.Struct(cfg); err != nil {
		return err
	}

	// Per-store backend checks (conditional fields the tags don't cover)
	for i := range cfg.Stores {
		if err := cfg.Stores[i].Validate(); err != nil {
			return err
		}
	}

	// Store names must stay distinct after normalization, otherwise two
	// stores would resolve to the same asset directory.
	seen := make(map[string]string, len(cfg.Stores))
	for _, s := range cfg.Stores {
		normalized := store.NormalizeName(s.Name)
		if normalized == "" {
			return fmt.Errorf("store %q: name normalizes to an empty string", s.Name)
		}
		if prev, ok := seen[normalized]; ok {
			return fmt.Errorf("stores %q and %q both normalize to %q", prev, s.Name, normalized)
		}
		seen[normalized] = s.Name
	}

	return nil
}
