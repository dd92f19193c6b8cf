package mongodb

import (
	"fmt"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"example.com/kalendas/internal/filter"
)

// Query renders a predicate as a Mongo filter document.
func Query(p filter.Predicate) (bson.M, error) {
	clauses := make([]bson.M, 0, len(p.Conditions))

	for _, c := range p.Conditions {
		switch c := c.(type) {
		case filter.Substring:
			clauses = append(clauses, bson.M{c.Field: primitive.Regex{Pattern: regexp.QuoteMeta(c.Value), Options: "i"}})

		case filter.AnyOf:
			clauses = append(clauses, bson.M{c.Field: bson.M{"$in": c.Values}})

		case filter.Equals:
			clauses = append(clauses, bson.M{c.Field: c.Value})

		case filter.Range:
			r := bson.M{}
			if c.Min != nil {
				r["$gte"] = c.Min
			}
			if c.Max != nil {
				r["$lte"] = c.Max
			}
			if len(r) > 0 {
				clauses = append(clauses, bson.M{c.Field: r})
			}

		default:
			return nil, fmt.Errorf("unsupported condition %T", c)
		}
	}

	switch len(clauses) {
	case 0:
		return bson.M{}, nil
	case 1:
		return clauses[0], nil
	}
	return bson.M{"$and": clauses}, nil
}
