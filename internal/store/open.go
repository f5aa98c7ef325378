package store

import (
	"context"
	"fmt"

	"github.com/donaldgifford/watchlist/internal/config"
)

// Open connects to the store selected by cfg.Driver. It does not migrate.
func Open(ctx context.Context, cfg *config.DatabaseConfig) (Store, error) {
	switch cfg.Driver {
	case config.DriverPostgres, "":
		s, err := NewPostgresStore(ctx, cfg.DSN(), WithPoolSize(cfg.PoolSize))
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		s, err := NewSQLiteStore(ctx, cfg.Path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}
