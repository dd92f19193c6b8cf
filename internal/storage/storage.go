// Package storage defines the contract every document-store backend
// implements for a single collection.
package storage

import (
	"context"
	"errors"

	"example.com/kalendas/internal/filter"
)

var ErrNotFound = errors.New("document not found")

// Document is what a collection stores: a record keyed by a string identity.
type Document interface {
	GetID() string
}

// Collection owns one set of documents of type T. Implementations must be
// safe for concurrent use; single-document operations are atomic.
type Collection[T Document] interface {
	Insert(ctx context.Context, doc T) error
	// Get returns ErrNotFound when no document has the id.
	Get(ctx context.Context, id string) (T, error)
	Find(ctx context.Context, p filter.Predicate) ([]T, error)
	// Merge overwrites the given top-level fields and returns the document
	// after the write. Fields not named are left untouched. Returns
	// ErrNotFound when no document has the id.
	Merge(ctx context.Context, id string, fields map[string]any) (T, error)
	// Delete returns the number of documents removed (0 or 1).
	Delete(ctx context.Context, id string) (int64, error)
	Drop(ctx context.Context) error
}

// Store is an open handle to a backend. Collections borrow it.
type Store interface {
	Name() string
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
