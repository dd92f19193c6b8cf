package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"example.com/kalendas/internal/filter"
	"example.com/kalendas/internal/storage"
)

// Collection stores documents of type T as JSONB rows of one table.
type Collection[T storage.Document] struct {
	db    *DB
	table string
}

func NewCollection[T storage.Document](ctx context.Context, db *DB, name string) (*Collection[T], error) {
	if err := db.EnsureTable(ctx, name); err != nil {
		return nil, err
	}
	return &Collection[T]{db: db, table: pgx.Identifier{name}.Sanitize()}, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc T) error {
	b, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	sql := "INSERT INTO " + c.table + " (id, doc) VALUES ($1, $2::jsonb)"
	_, err = c.db.Pool.Exec(ctx, sql, doc.GetID(), string(b))
	return err
}

func (c *Collection[T]) Get(ctx context.Context, id string) (T, error) {
	row := c.db.Pool.QueryRow(ctx, "SELECT doc FROM "+c.table+" WHERE id = $1", id)
	return scanDoc[T](row)
}

func (c *Collection[T]) Find(ctx context.Context, p filter.Predicate) ([]T, error) {
	cond, args, err := Where(p)
	if err != nil {
		return nil, err
	}
	rows, err := c.db.Pool.Query(ctx, "SELECT doc FROM "+c.table+" "+cond, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []T{}
	for rows.Next() {
		doc, err := scanDoc[T](rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

// Merge relies on jsonb concatenation, which replaces top-level keys only.
func (c *Collection[T]) Merge(ctx context.Context, id string, fields map[string]any) (T, error) {
	if len(fields) == 0 {
		return c.Get(ctx, id)
	}
	b, err := json.Marshal(fields)
	if err != nil {
		var zero T
		return zero, fmt.Errorf("encode patch: %w", err)
	}
	sql := "UPDATE " + c.table + " SET doc = doc || $2::jsonb WHERE id = $1 RETURNING doc"
	return scanDoc[T](c.db.Pool.QueryRow(ctx, sql, id, string(b)))
}

func (c *Collection[T]) Delete(ctx context.Context, id string) (int64, error) {
	ct, err := c.db.Pool.Exec(ctx, "DELETE FROM "+c.table+" WHERE id = $1", id)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// Drop removes every document; the table itself is kept.
func (c *Collection[T]) Drop(ctx context.Context) error {
	_, err := c.db.Pool.Exec(ctx, "TRUNCATE "+c.table)
	return err
}

func scanDoc[T storage.Document](row pgx.Row) (T, error) {
	var (
		doc T
		raw []byte
	)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return doc, storage.ErrNotFound
		}
		return doc, err
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return doc, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}
