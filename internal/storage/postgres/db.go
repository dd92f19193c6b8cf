package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DB struct {
	Pool *pgxpool.Pool
}

func Connect(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &DB{Pool: pool}, nil
}

func (db *DB) Name() string { return "postgres" }

func (db *DB) Close(context.Context) error {
	if db.Pool != nil {
		db.Pool.Close()
	}
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	var one int
	return db.Pool.QueryRow(ctx, "select 1").Scan(&one)
}

// EnsureTable creates the backing table of a collection: one JSONB document
// per row, keyed by the document id.
func (db *DB) EnsureTable(ctx context.Context, name string) error {
	sql := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
  id  text PRIMARY KEY,
  doc jsonb NOT NULL
)`, pgx.Identifier{name}.Sanitize())
	if _, err := db.Pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("create table %s: %w", name, err)
	}
	return nil
}
