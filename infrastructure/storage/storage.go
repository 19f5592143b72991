// Package storage selects a room counter backend from configuration.
package storage

import (
	"context"
	"fmt"
	"log"

	"github.com/fllarpy/room-analytics/config"
	"github.com/fllarpy/room-analytics/domain"
	"github.com/fllarpy/room-analytics/infrastructure/storage/actor"
	"github.com/fllarpy/room-analytics/infrastructure/storage/inmemory"
	"github.com/fllarpy/room-analytics/infrastructure/storage/sqlite"
)

// Open builds the backend named by cfg.Backend. The caller owns the store
// and must Close it.
func Open(ctx context.Context, cfg config.StoreConfig) (domain.CounterStore, error) {
	switch cfg.Backend {
	case config.BackendMemory, "":
		log.Println("Storage: using in-memory mutex store.")
		return inmemory.NewStore(), nil
	case config.BackendActor:
		log.Println("Storage: using single-owner actor store.")
		return actor.NewStore(), nil
	case config.BackendSQLite:
		log.Printf("Storage: using sqlite store (%s).", cfg.SQLiteDSN)
		store, err := sqlite.Open(ctx, cfg.SQLiteDSN)
		if err != nil {
			return nil, fmt.Errorf("open sqlite store: %w", err)
		}
		return store, nil
	default:
		return nil, fmt.Errorf("%w: unknown store backend %q", config.ErrInvalidConfig, cfg.Backend)
	}
}
