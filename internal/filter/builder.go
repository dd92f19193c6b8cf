package filter

import (
	"net/url"
	"strconv"
	"strings"

	"example.com/kalendas/internal/apperr"
	"example.com/kalendas/internal/isotime"
)

type Kind int

const (
	KindSubstring Kind = iota
	KindAnyOf
	KindExact
	KindMin
	KindMax
)

// ValueType tells the builder how to parse a raw query value.
type ValueType int

const (
	TypeString ValueType = iota
	TypeBool
	TypeInt
	TypeTime
)

// Option declares one recognized query parameter and the comparison it
// produces on a document field. KindMin and KindMax options naming the same
// field are combined into a single Range.
type Option struct {
	Param string
	Field string
	Kind  Kind
	Type  ValueType
}

type Builder struct {
	options []Option
}

func NewBuilder(opts ...Option) *Builder {
	return &Builder{options: opts}
}

// Params lists the recognized parameter names, in declaration order.
func (b *Builder) Params() []string {
	out := make([]string, 0, len(b.options))
	for _, o := range b.options {
		out = append(out, o.Param)
	}
	return out
}

// Build turns the supplied query values into a conjunctive predicate.
// Parameters that are absent or empty impose no constraint; unrecognized
// parameters are ignored. A value that does not parse as the option's type is
// reported as a validation error naming the parameter.
func (b *Builder) Build(values url.Values) (Predicate, error) {
	var p Predicate
	ranges := map[string]int{} // field -> index into p.Conditions

	for _, opt := range b.options {
		raw := supplied(values[opt.Param])
		if len(raw) == 0 {
			continue
		}

		switch opt.Kind {
		case KindSubstring:
			p.Conditions = append(p.Conditions, Substring{Field: opt.Field, Value: raw[0]})

		case KindAnyOf:
			p.Conditions = append(p.Conditions, AnyOf{Field: opt.Field, Values: raw})

		case KindExact:
			v, err := parse(opt, raw[0])
			if err != nil {
				return Predicate{}, err
			}
			p.Conditions = append(p.Conditions, Equals{Field: opt.Field, Value: v})

		case KindMin, KindMax:
			v, err := parse(opt, raw[0])
			if err != nil {
				return Predicate{}, err
			}
			idx, ok := ranges[opt.Field]
			if !ok {
				idx = len(p.Conditions)
				ranges[opt.Field] = idx
				p.Conditions = append(p.Conditions, Range{Field: opt.Field})
			}
			r := p.Conditions[idx].(Range)
			if opt.Kind == KindMin {
				r.Min = v
			} else {
				r.Max = v
			}
			p.Conditions[idx] = r
		}
	}
	return p, nil
}

// supplied drops blank values. The rest are kept as given; only typed values
// are trimmed, when parsed.
func supplied(vals []string) []string {
	var out []string
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}

func parse(opt Option, raw string) (any, error) {
	if opt.Type != TypeString {
		raw = strings.TrimSpace(raw)
	}
	switch opt.Type {
	case TypeBool:
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, apperr.InvalidParam(opt.Param, "must be a boolean")
		}
		return v, nil
	case TypeInt:
		v, err := strconv.Atoi(raw)
		if err != nil {
			return nil, apperr.InvalidParam(opt.Param, "must be an integer")
		}
		return v, nil
	case TypeTime:
		v, err := isotime.Parse(raw)
		if err != nil {
			return nil, apperr.InvalidParam(opt.Param, "must be an ISO-8601 timestamp")
		}
		return v, nil
	default:
		return raw, nil
	}
}
