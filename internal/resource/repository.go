// Package resource holds the persistence and business layers shared by every
// resource type. Calendars and events are instances of the same generic
// Repository and Service.
package resource

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"example.com/kalendas/internal/apperr"
	"example.com/kalendas/internal/domain"
	"example.com/kalendas/internal/filter"
	"example.com/kalendas/internal/storage"
)

// Record is a storable resource. Implementations are pointer types.
type Record interface {
	storage.Document
	SetID(id string)
	Normalize()
	Validate(domain.Rules) domain.FieldErrors
	References() []domain.Reference
}

// Repository is the only component touching one collection. Every call to the
// store is bounded by the configured timeout.
type Repository[T Record] struct {
	coll    storage.Collection[T]
	noun    string
	timeout time.Duration
	newID   func() string
}

// NewRepository wraps coll. noun names the resource in error messages
// ("calendar", "event").
func NewRepository[T Record](coll storage.Collection[T], noun string, timeout time.Duration) *Repository[T] {
	return &Repository[T]{coll: coll, noun: noun, timeout: timeout, newID: uuid.NewString}
}

func (r *Repository[T]) Noun() string { return r.noun }

func (r *Repository[T]) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *Repository[T]) notFound(id string) error {
	return apperr.NotFoundf("%s with id %s not found", r.noun, id)
}

// Create stores rec under a freshly generated id, replacing whatever id it
// carried.
func (r *Repository[T]) Create(ctx context.Context, rec T) (T, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rec.SetID(r.newID())
	rec.Normalize()
	if err := r.coll.Insert(ctx, rec); err != nil {
		var zero T
		return zero, apperr.Store("create "+r.noun, err)
	}
	return rec, nil
}

func (r *Repository[T]) GetByID(ctx context.Context, id string) (T, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	rec, err := r.coll.Get(ctx, id)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return rec, r.notFound(id)
	case err != nil:
		return rec, apperr.Store("get "+r.noun, err)
	}
	return rec, nil
}

// Exists reports whether a record with the id is stored.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.GetByID(ctx, id)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	return err == nil, err
}

// ListByFilter returns every record matching p in the store's natural order.
func (r *Repository[T]) ListByFilter(ctx context.Context, p filter.Predicate) ([]T, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	recs, err := r.coll.Find(ctx, p)
	if err != nil {
		return nil, apperr.Store("list "+r.noun+"s", err)
	}
	for _, rec := range recs {
		rec.Normalize()
	}
	return recs, nil
}

// Update merges fields onto the stored record and returns the result. An
// empty field set leaves the record as it is.
func (r *Repository[T]) Update(ctx context.Context, id string, fields map[string]any) (T, error) {
	if len(fields) == 0 {
		return r.GetByID(ctx, id)
	}

	ctx, cancel := r.bound(ctx)
	defer cancel()

	rec, err := r.coll.Merge(ctx, id, fields)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		return rec, r.notFound(id)
	case err != nil:
		return rec, apperr.Store("update "+r.noun, err)
	}
	rec.Normalize()
	return rec, nil
}

// Delete removes the record and returns the number removed. A count of zero
// comes with a NotFound error.
func (r *Repository[T]) Delete(ctx context.Context, id string) (int64, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	n, err := r.coll.Delete(ctx, id)
	if err != nil {
		return 0, apperr.Store("delete "+r.noun, err)
	}
	if n == 0 {
		return 0, r.notFound(id)
	}
	return n, nil
}

// Drop empties the collection. Used by seeding only.
func (r *Repository[T]) Drop(ctx context.Context) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	if err := r.coll.Drop(ctx); err != nil {
		return apperr.Store("drop "+r.noun+"s", err)
	}
	return nil
}
