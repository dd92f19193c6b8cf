package postgres

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"example.com/kalendas/internal/filter"
)

// Where renders a predicate as a WHERE clause over the doc column. An empty
// predicate renders as an empty string.
func Where(p filter.Predicate) (string, []any, error) {
	if p.Empty() {
		return "", nil, nil
	}

	var (
		conds []string
		args  []any
	)
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	for _, c := range p.Conditions {
		switch c := c.(type) {
		case filter.Substring:
			conds = append(conds, fmt.Sprintf("strpos(lower(%s), lower(%s)) > 0", text(c.Field), next(c.Value)))

		case filter.AnyOf:
			conds = append(conds, fmt.Sprintf("%s ?| %s::text[]", jsonb(c.Field), next(c.Values)))

		case filter.Equals:
			b, err := json.Marshal(map[string]any{c.Field: c.Value})
			if err != nil {
				return "", nil, fmt.Errorf("encode %s: %w", c.Field, err)
			}
			conds = append(conds, fmt.Sprintf("doc @> %s::jsonb", next(string(b))))

		case filter.Range:
			if c.Min != nil {
				col, err := typed(c.Field, c.Min)
				if err != nil {
					return "", nil, err
				}
				conds = append(conds, fmt.Sprintf("%s >= %s", col, next(c.Min)))
			}
			if c.Max != nil {
				col, err := typed(c.Field, c.Max)
				if err != nil {
					return "", nil, err
				}
				conds = append(conds, fmt.Sprintf("%s <= %s", col, next(c.Max)))
			}

		default:
			return "", nil, fmt.Errorf("unsupported condition %T", c)
		}
	}
	return "WHERE " + strings.Join(conds, " AND "), args, nil
}

func literal(field string) string {
	return "'" + strings.ReplaceAll(field, "'", "''") + "'"
}

func text(field string) string  { return "doc->>" + literal(field) }
func jsonb(field string) string { return "doc->" + literal(field) }

// typed casts the field text to the SQL type matching the bound.
func typed(field string, bound any) (string, error) {
	switch bound.(type) {
	case time.Time:
		return "(" + text(field) + ")::timestamptz", nil
	case int, int64, float64:
		return "(" + text(field) + ")::numeric", nil
	case string:
		return text(field), nil
	}
	return "", fmt.Errorf("unsupported range bound %T on %s", bound, field)
}
