// Package storage selects the campaign store named by configuration.
package storage

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/hexcrawl/internal/config"
	"github.com/cory-johannsen/hexcrawl/internal/game/campaign"
	"github.com/cory-johannsen/hexcrawl/internal/storage/file"
	"github.com/cory-johannsen/hexcrawl/internal/storage/postgres"
	"github.com/cory-johannsen/hexcrawl/internal/storage/sqlite"
)

// Open returns the store for cfg.Driver.
//
// Precondition: cfg has passed config validation.
// Postcondition: The caller must Close the returned store.
func Open(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (campaign.Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("driver", cfg.Driver))
	switch cfg.Driver {
	case config.DriverFile:
		s, err := file.Open(cfg.Path, cfg.Compress, logger)
		if err != nil {
			return nil, err
		}
		return s, nil
	case config.DriverSQLite:
		db, err := sqlite.Open(cfg.Path, logger)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverPostgres:
		if cfg.Database.AutoMigrate {
			version, err := postgres.MigrateUp(cfg.Database.DSN())
			if err != nil {
				return nil, err
			}
			logger.Info("campaign schema migrated", zap.Uint("version", version))
		}
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		return postgres.NewStore(pool), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
