package boltdb

import (
	"context"
	"encoding/json"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"example.com/kalendas/internal/filter"
	"example.com/kalendas/internal/storage"
)

// Collection keeps documents of type T in one bucket. Predicates are
// evaluated in process against the decoded JSON.
type Collection[T storage.Document] struct {
	db     *DB
	bucket []byte
}

func NewCollection[T storage.Document](db *DB, name string) (*Collection[T], error) {
	if err := db.ensureBucket([]byte(name)); err != nil {
		return nil, err
	}
	return &Collection[T]{db: db, bucket: []byte(name)}, nil
}

func (c *Collection[T]) Insert(_ context.Context, doc T) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}
	key := []byte(doc.GetID())
	return c.db.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b.Get(key) != nil {
			return fmt.Errorf("duplicate id %s in %s", key, c.bucket)
		}
		return b.Put(key, raw)
	})
}

func (c *Collection[T]) Get(_ context.Context, id string) (T, error) {
	var doc T
	err := c.db.d.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(c.bucket).Get([]byte(id))
		if raw == nil {
			return storage.ErrNotFound
		}
		return json.Unmarshal(raw, &doc)
	})
	return doc, err
}

func (c *Collection[T]) Find(_ context.Context, p filter.Predicate) ([]T, error) {
	out := []T{}
	err := c.db.d.View(func(tx *bolt.Tx) error {
		return tx.Bucket(c.bucket).ForEach(func(_, raw []byte) error {
			if !p.Empty() {
				var m map[string]any
				if err := json.Unmarshal(raw, &m); err != nil {
					return err
				}
				if !p.Match(m) {
					return nil
				}
			}
			var doc T
			if err := json.Unmarshal(raw, &doc); err != nil {
				return err
			}
			out = append(out, doc)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Merge reads, overlays and writes back inside one read-write transaction.
func (c *Collection[T]) Merge(_ context.Context, id string, fields map[string]any) (T, error) {
	var doc T
	patch, err := json.Marshal(fields)
	if err != nil {
		return doc, fmt.Errorf("encode patch: %w", err)
	}
	err = c.db.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		raw := b.Get([]byte(id))
		if raw == nil {
			return storage.ErrNotFound
		}
		var current, overlay map[string]any
		if err := json.Unmarshal(raw, &current); err != nil {
			return err
		}
		if err := json.Unmarshal(patch, &overlay); err != nil {
			return err
		}
		for k, v := range overlay {
			current[k] = v
		}
		merged, err := json.Marshal(current)
		if err != nil {
			return err
		}
		if err := b.Put([]byte(id), merged); err != nil {
			return err
		}
		return json.Unmarshal(merged, &doc)
	})
	return doc, err
}

func (c *Collection[T]) Delete(_ context.Context, id string) (int64, error) {
	var n int64
	err := c.db.d.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(c.bucket)
		if b.Get([]byte(id)) == nil {
			return nil
		}
		n = 1
		return b.Delete([]byte(id))
	})
	return n, err
}

func (c *Collection[T]) Drop(context.Context) error {
	return c.db.resetBucket(c.bucket)
}
