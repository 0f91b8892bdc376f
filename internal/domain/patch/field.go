// Package patch distinguishes "omitted" from "explicitly null" in partial
// update bodies.
package patch

import (
	"bytes"
	"encoding/json"
)

// Field records whether a JSON key was present and whether it held null.
//
//	{}              -> Set=false
//	{"x": null}     -> Set=true, Null=true
//	{"x": "value"}  -> Set=true, Null=false, Value="value"
type Field[T any] struct {
	Set   bool
	Null  bool
	Value T
}

func (f *Field[T]) UnmarshalJSON(data []byte) error {
	f.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		f.Null = true
		var zero T
		f.Value = zero
		return nil
	}
	f.Null = false
	return json.Unmarshal(data, &f.Value)
}

func (f Field[T]) MarshalJSON() ([]byte, error) {
	if !f.Set || f.Null {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// Present reports a non-null value was supplied.
func (f Field[T]) Present() bool { return f.Set && !f.Null }

// Cleared reports an explicit null was supplied.
func (f Field[T]) Cleared() bool { return f.Set && f.Null }

// Of builds a supplied field, mostly for tests and internal callers.
func Of[T any](v T) Field[T] { return Field[T]{Set: true, Value: v} }

// Null builds an explicitly-null field.
func Null[T any]() Field[T] { return Field[T]{Set: true, Null: true} }
