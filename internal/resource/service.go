package resource

import (
	"context"
	"fmt"
	"net/url"

	"github.com/google/uuid"

	"example.com/kalendas/internal/apperr"
	"example.com/kalendas/internal/domain"
	"example.com/kalendas/internal/filter"
)

// Patch is a partial update of a record of some type.
type Patch interface {
	Fields() map[string]any
	Validate(domain.Rules) domain.FieldErrors
	References() []domain.Reference
}

// Exister resolves weak references into one collection.
type Exister interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// Policy is the set of business rules a Service applies on write.
type Policy struct {
	Rules domain.Rules
	// References maps a collection name to its resolver. When nil, dangling
	// references are stored as given.
	References map[string]Exister
}

// Service is the business layer over a Repository: identity checks, schema
// rules, reference policy and filter parsing.
type Service[T Record, P Patch] struct {
	repo    *Repository[T]
	filters *filter.Builder
	policy  Policy
}

func NewService[T Record, P Patch](repo *Repository[T], filters *filter.Builder, policy Policy) *Service[T, P] {
	return &Service[T, P]{repo: repo, filters: filters, policy: policy}
}

// Repository exposes the underlying repository, e.g. as an Exister for
// another service.
func (s *Service[T, P]) Repository() *Repository[T] { return s.repo }

func (s *Service[T, P]) Create(ctx context.Context, rec T) (T, error) {
	rec.Normalize()
	if err := rec.Validate(s.policy.Rules).Err(); err != nil {
		var zero T
		return zero, err
	}
	if err := s.checkReferences(ctx, rec.References()); err != nil {
		var zero T
		return zero, err
	}
	return s.repo.Create(ctx, rec)
}

func (s *Service[T, P]) GetByID(ctx context.Context, id string) (T, error) {
	if err := checkID(id); err != nil {
		var zero T
		return zero, err
	}
	return s.repo.GetByID(ctx, id)
}

// List builds a predicate from the query parameters and returns the matching
// records.
func (s *Service[T, P]) List(ctx context.Context, params url.Values) ([]T, error) {
	p, err := s.filters.Build(params)
	if err != nil {
		return nil, err
	}
	return s.repo.ListByFilter(ctx, p)
}

func (s *Service[T, P]) Update(ctx context.Context, id string, patch P) (T, error) {
	var zero T
	if err := checkID(id); err != nil {
		return zero, err
	}
	if err := patch.Validate(s.policy.Rules).Err(); err != nil {
		return zero, err
	}
	if err := s.checkReferences(ctx, patch.References()); err != nil {
		return zero, err
	}
	return s.repo.Update(ctx, id, patch.Fields())
}

// Delete reports whether a record was removed. An unknown id is not an
// error; it yields false.
func (s *Service[T, P]) Delete(ctx context.Context, id string) (bool, error) {
	if err := checkID(id); err != nil {
		return false, err
	}
	n, err := s.repo.Delete(ctx, id)
	if apperr.IsNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Service[T, P]) checkReferences(ctx context.Context, refs []domain.Reference) error {
	if s.policy.References == nil {
		return nil
	}
	var errs domain.FieldErrors
	for _, ref := range refs {
		ex, ok := s.policy.References[ref.Collection]
		if !ok {
			continue
		}
		found, err := ex.Exists(ctx, ref.ID)
		if err != nil {
			return err
		}
		if !found {
			errs = append(errs, domain.FieldError{Field: ref.Field, Msg: fmt.Sprintf("references unknown %s %s", ref.Collection, ref.ID)})
		}
	}
	return errs.Err()
}

func checkID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.InvalidParam("id", "must be a UUID")
	}
	return nil
}
