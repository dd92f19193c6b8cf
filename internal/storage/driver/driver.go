// Package driver opens the backend selected by configuration and hands out
// typed collections on it.
package driver

import (
	"context"
	"fmt"

	"example.com/kalendas/internal/config"
	"example.com/kalendas/internal/storage"
	"example.com/kalendas/internal/storage/boltdb"
	"example.com/kalendas/internal/storage/mongodb"
	"example.com/kalendas/internal/storage/postgres"
)

// Open connects to the configured backend and verifies it answers.
func Open(ctx context.Context, cfg config.StoreConfig) (storage.Store, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.StoreTimeout)
	defer cancel()

	var (
		s   storage.Store
		err error
	)
	switch cfg.StoreDriver {
	case config.DriverMongo:
		s, err = mongodb.Connect(ctx, cfg.MongoURI, cfg.MongoDatabase)
	case config.DriverPostgres:
		s, err = postgres.Connect(ctx, cfg.PostgresDSN)
	case config.DriverBolt:
		s, err = boltdb.Open(cfg.BoltPath)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.StoreDriver)
	}
	if err != nil {
		return nil, err
	}
	if err := s.Ping(ctx); err != nil {
		_ = s.Close(context.Background())
		return nil, fmt.Errorf("%s ping: %w", s.Name(), err)
	}
	return s, nil
}

// Collection returns the named collection of documents of type T on s.
func Collection[T storage.Document](ctx context.Context, s storage.Store, name string) (storage.Collection[T], error) {
	switch db := s.(type) {
	case *mongodb.Client:
		return mongodb.NewCollection[T](db, name), nil
	case *postgres.DB:
		return postgres.NewCollection[T](ctx, db, name)
	case *boltdb.DB:
		return boltdb.NewCollection[T](db, name)
	default:
		return nil, fmt.Errorf("unsupported store %T", s)
	}
}
