// Package optional carries the difference between a field that was omitted
// from a request body and one that was explicitly set, including to null.
package optional

import (
	"bytes"
	"encoding/json"
)

// Value is absent until set. A set Value is either null or holds a value.
type Value[T any] struct {
	set   bool
	null  bool
	value T
}

func Of[T any](value T) Value[T] {
	return Value[T]{set: true, value: value}
}

func Null[T any]() Value[T] {
	return Value[T]{set: true, null: true}
}

func (v Value[T]) IsSet() bool {
	return v.set
}

func (v Value[T]) IsNull() bool {
	return v.set && v.null
}

// Get returns the value and true when it is set and not null.
func (v Value[T]) Get() (T, bool) {
	if !v.set || v.null {
		var zero T
		return zero, false
	}
	return v.value, true
}

// Ptr returns nil for null or absent values.
func (v Value[T]) Ptr() *T {
	if !v.set || v.null {
		return nil
	}
	value := v.value
	return &value
}

// IsZero reports absence, so `omitzero` drops unset fields when encoding.
func (v Value[T]) IsZero() bool {
	return !v.set
}

func (v *Value[T]) UnmarshalJSON(data []byte) error {
	v.set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		var zero T
		v.null = true
		v.value = zero
		return nil
	}
	v.null = false
	return json.Unmarshal(data, &v.value)
}

func (v Value[T]) MarshalJSON() ([]byte, error) {
	if !v.set || v.null {
		return []byte("null"), nil
	}
	return json.Marshal(v.value)
}
