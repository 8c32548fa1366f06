// Package storage picks the baseline store named by configuration.
package storage

import (
	"context"
	"fmt"

	"inventra/internal/config"
	corenumerator "inventra/internal/core/numerator"
	"inventra/internal/infrastructure/storage/filestore"
	"inventra/internal/infrastructure/storage/memory"
	"inventra/internal/infrastructure/storage/postgres"
	"inventra/internal/infrastructure/storage/redisstore"
	"inventra/pkg/logger"
)

// Opened is an open baseline store and its lifecycle hooks.
type Opened struct {
	Store corenumerator.BaselineStore

	// Ping is nil for stores without a remote backend
	Ping  func(ctx context.Context) error
	Close func()
}

// Open connects the configured baseline store.
func Open(ctx context.Context, cfg config.StoreConfig) (*Opened, error) {
	switch cfg.Driver {
	case config.StoreMemory:
		return &Opened{Store: memory.NewBaselineStore(), Close: func() {}}, nil

	case config.StoreFile:
		return &Opened{Store: filestore.New(cfg.File), Close: func() {}}, nil

	case config.StorePostgres:
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("open postgres store: %w", err)
		}
		store := postgres.NewBaselineStore(pool)
		if err := store.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, err
		}
		logger.Info(ctx, "baseline store ready", "driver", cfg.Driver)
		return &Opened{Store: store, Ping: pool.Ping, Close: pool.Close}, nil

	case config.StoreRedis:
		store, rdb, err := redisstore.Connect(ctx, redisstore.Options{
			Addr:     cfg.RedisAddress,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, fmt.Errorf("open redis store: %w", err)
		}
		return &Opened{
			Store: store,
			Ping:  func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
			Close: func() {
				if err := rdb.Close(); err != nil {
					logger.Warn(ctx, "redis close failed", "error", err)
				}
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}
