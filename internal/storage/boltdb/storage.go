package boltdb

import (
	"context"
	"errors"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"
)

// DB is an embedded single-file store. Each collection is a bucket of JSON
// documents keyed by id.
type DB struct {
	d    *bolt.DB
	path string
}

func Open(path string) (*DB, error) {
	d, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("could not open db %s %w", path, err)
	}
	return &DB{d: d, path: path}, nil
}

func (db *DB) Name() string { return "bolt" }

func (db *DB) Ping(context.Context) error {
	return db.d.View(func(*bolt.Tx) error { return nil })
}

// Close closes the boltdb database if possible.
func (db *DB) Close(context.Context) error {
	if db.d == nil {
		return nil
	}
	return db.d.Close()
}

func (db *DB) ensureBucket(name []byte) error {
	return db.d.Update(func(tx *bolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(name)
		if err != nil {
			return fmt.Errorf("unable to create bucket %s: %w", name, err)
		}
		if !b.Writable() {
			return fmt.Errorf("non writeable bucket %s", name)
		}
		return nil
	})
}

func (db *DB) resetBucket(name []byte) error {
	return db.d.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(name); err != nil && !errors.Is(err, bolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(name)
		return err
	})
}
