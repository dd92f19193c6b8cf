package postgres_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"example.com/kalendas/internal/filter"
	"example.com/kalendas/internal/storage/postgres"
)

func TestWhereEmpty(t *testing.T) {
	cond, args, err := postgres.Where(filter.Predicate{})
	require.NoError(t, err)
	assert.Empty(t, cond)
	assert.Empty(t, args)
}

func TestWhereCalendarFilters(t *testing.T) {
	p := filter.And(
		filter.Substring{Field: "organizer", Value: "hall"},
		filter.AnyOf{Field: "keywords", Values: []string{"sport", "city"}},
		filter.Equals{Field: "isPublic", Value: true},
	)

	cond, args, err := postgres.Where(p)
	require.NoError(t, err)
	assert.Equal(t,
		"WHERE strpos(lower(doc->>'organizer'), lower($1)) > 0 AND doc->'keywords' ?| $2::text[] AND doc @> $3::jsonb",
		cond)
	assert.Equal(t, []any{"hall", []string{"sport", "city"}, `{"isPublic":true}`}, args)
}

func TestWhereRanges(t *testing.T) {
	from := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)
	p := filter.And(
		filter.Range{Field: "startTime", Min: from},
		filter.Range{Field: "durationMinutes", Min: 60, Max: 240},
	)

	cond, args, err := postgres.Where(p)
	require.NoError(t, err)
	assert.Equal(t,
		"WHERE (doc->>'startTime')::timestamptz >= $1 AND (doc->>'durationMinutes')::numeric >= $2 AND (doc->>'durationMinutes')::numeric <= $3",
		cond)
	assert.Equal(t, []any{from, 60, 240}, args)
}

func TestWhereRejectsUnknownBound(t *testing.T) {
	_, _, err := postgres.Where(filter.And(filter.Range{Field: "x", Min: []int{1}}))
	assert.Error(t, err)
}
