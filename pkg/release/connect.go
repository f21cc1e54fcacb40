package release

import (
	"context"
	"database/sql"

	"github.com/andreapavoni/distillery/internal/logger"
	"github.com/andreapavoni/distillery/pkg/store"
)

// Conn pairs a store's configuration with its live connection pool.
type Conn struct {
	Store store.Config
	DB    *sql.DB
}

// ConnectAll opens a connection pool for every configured store, in
// order. The first failure closes every already-open pool and aborts the
// run: migrations must be all-or-nothing across the store set, so a run
// never starts with only part of its stores reachable.
func ConnectAll(ctx context.Context, stores []store.Config) ([]Conn, error) {
	conns := make([]Conn, 0, len(stores))

	for _, s := range stores {
		db, err := s.Open(ctx)
		if err != nil {
			CloseAll(conns)
			return nil, &ConnectionError{Store: s.Name, Err: err}
		}
		logger.Info("store connected",
			"store", s.Name,
			"type", string(s.Type),
			"pool_size", s.PoolSize)
		conns = append(conns, Conn{Store: s, DB: db})
	}

	return conns, nil
}

// CloseAll closes every pool in the set, logging rather than failing on
// close errors.
func CloseAll(conns []Conn) {
	for _, c := range conns {
		if c.DB == nil {
			continue
		}
		if err := c.DB.Close(); err != nil {
			logger.Warn("closing store pool", "store", c.Store.Name, "error", err)
		}
	}
}
