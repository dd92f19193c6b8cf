package domain

import (
	"bytes"
	"encoding/json"
)

// Field is one member of a patch document. It records whether the key was
// present in the payload at all, and whether it was an explicit null, so that
// absent keys are never written.
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(b []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(b), []byte("null")) {
		f.Null = true
		return nil
	}
	return json.Unmarshal(b, &f.Value)
}

// Present reports a non-null value.
func (f Field[T]) Present() bool { return f.Set && !f.Null }
