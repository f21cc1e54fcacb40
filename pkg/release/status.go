package release

import (
	"context"

	"github.com/andreapavoni/distillery/pkg/config"
)

// StoreStatus describes one store's current schema state as recorded by
// the migration engine's bookkeeping table.
type StoreStatus struct {
	Store   string `json:"store" yaml:"store"`
	App     string `json:"app" yaml:"app"`
	Type    string `json:"type" yaml:"type"`
	Version uint   `json:"version" yaml:"version"`
	Dirty   bool   `json:"dirty" yaml:"dirty"`
	Applied bool   `json:"applied" yaml:"applied"`
}

// Status connects to every configured store and reports its schema
// version without applying any migrations. Reading the version goes
// through the engine's driver, which creates the empty bookkeeping table
// in a store that has never been migrated. Connections are closed before
// returning.
func Status(ctx context.Context, cfg *config.Config) ([]StoreStatus, error) {
	conns, err := ConnectAll(ctx, cfg.Stores)
	if err != nil {
		return nil, err
	}
	defer CloseAll(conns)

	statuses := make([]StoreStatus, 0, len(conns))
	for _, conn := range conns {
		version, dirty, applied, err := StoreVersion(conn)
		if err != nil {
			return nil, &MigrationError{Store: conn.Store.Name, Err: err}
		}
		statuses = append(statuses, StoreStatus{
			Store:   conn.Store.Name,
			App:     conn.Store.App,
			Type:    string(conn.Store.Type),
			Version: version,
			Dirty:   dirty,
			Applied: applied,
		})
	}

	return statuses, nil
}
