// Package isotime parses ISO-8601 timestamps leniently. Values without a
// zone offset are taken as UTC.
package isotime

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
)

var zoned = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04Z07:00",
}

var naive = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
}

func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range zoned {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	for _, layout := range naive {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q is not an ISO-8601 timestamp", s)
}

// Time is a time.Time that decodes from lenient ISO-8601, renders as
// RFC 3339 UTC and is stored as a native BSON datetime.
type Time struct {
	time.Time
}

func New(t time.Time) Time { return Time{t.UTC()} }

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

func (t *Time) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string")
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t Time) MarshalBSONValue() (bsontype.Type, []byte, error) {
	return bson.MarshalValue(t.UTC())
}

func (t *Time) UnmarshalBSONValue(typ bsontype.Type, data []byte) error {
	var tt time.Time
	if err := (bson.RawValue{Type: typ, Value: data}).Unmarshal(&tt); err != nil {
		return err
	}
	t.Time = tt.UTC()
	return nil
}
