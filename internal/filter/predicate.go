package filter

import (
	"cmp"
	"strings"
	"time"

	"example.com/kalendas/internal/isotime"
)

// Condition is one comparison over a single top-level document field. The set
// of implementations is closed: Substring, AnyOf, Equals and Range.
type Condition interface {
	FieldName() string
	// Match evaluates the condition against a JSON-decoded document.
	Match(doc map[string]any) bool
	isCondition()
}

// Substring matches when the field contains Value, ignoring letter case.
type Substring struct {
	Field string
	Value string
}

// AnyOf matches when the multi-valued field shares at least one element with Values.
type AnyOf struct {
	Field  string
	Values []string
}

type Equals struct {
	Field string
	Value any
}

// Range is inclusive on both sides. A nil bound leaves that side open.
type Range struct {
	Field string
	Min   any
	Max   any
}

func (c Substring) FieldName() string { return c.Field }
func (c AnyOf) FieldName() string     { return c.Field }
func (c Equals) FieldName() string    { return c.Field }
func (c Range) FieldName() string     { return c.Field }

func (Substring) isCondition() {}
func (AnyOf) isCondition()     {}
func (Equals) isCondition()    {}
func (Range) isCondition()     {}

func (c Substring) Match(doc map[string]any) bool {
	s, ok := doc[c.Field].(string)
	if !ok {
		return false
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(c.Value))
}

func (c AnyOf) Match(doc map[string]any) bool {
	items, ok := doc[c.Field].([]any)
	if !ok {
		return false
	}
	for _, it := range items {
		s, ok := it.(string)
		if !ok {
			continue
		}
		for _, v := range c.Values {
			if s == v {
				return true
			}
		}
	}
	return false
}

func (c Equals) Match(doc map[string]any) bool {
	n, ok := compare(doc[c.Field], c.Value)
	return ok && n == 0
}

func (c Range) Match(doc map[string]any) bool {
	v := doc[c.Field]
	if c.Min != nil {
		if n, ok := compare(v, c.Min); !ok || n < 0 {
			return false
		}
	}
	if c.Max != nil {
		if n, ok := compare(v, c.Max); !ok || n > 0 {
			return false
		}
	}
	return true
}

// Predicate is the conjunction of its conditions. The zero value matches everything.
type Predicate struct {
	Conditions []Condition
}

func And(conds ...Condition) Predicate { return Predicate{Conditions: conds} }

func (p Predicate) Empty() bool { return len(p.Conditions) == 0 }

func (p Predicate) Match(doc map[string]any) bool {
	for _, c := range p.Conditions {
		if !c.Match(doc) {
			return false
		}
	}
	return true
}

// compare orders a JSON-decoded document value against a typed operand.
// ok is false when the two cannot be compared.
func compare(docVal any, operand any) (n int, ok bool) {
	switch want := operand.(type) {
	case int:
		f, isNum := docVal.(float64)
		if !isNum {
			return 0, false
		}
		return cmp.Compare(f, float64(want)), true
	case float64:
		f, isNum := docVal.(float64)
		if !isNum {
			return 0, false
		}
		return cmp.Compare(f, want), true
	case string:
		s, isStr := docVal.(string)
		if !isStr {
			return 0, false
		}
		return strings.Compare(s, want), true
	case bool:
		b, isBool := docVal.(bool)
		if !isBool {
			return 0, false
		}
		if b == want {
			return 0, true
		}
		return 1, true
	case time.Time:
		s, isStr := docVal.(string)
		if !isStr {
			return 0, false
		}
		t, err := isotime.Parse(s)
		if err != nil {
			return 0, false
		}
		return t.Compare(want), true
	}
	return 0, false
}
