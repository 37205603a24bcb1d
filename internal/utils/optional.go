package utils

import "encoding/json"

// Optional records whether a JSON field was present, and whether it was null.
// It lets partial updates tell "not sent" apart from "cleared".
type Optional[T any] struct {
	Set   bool
	Null  bool
	Value T
}

// Some returns an Optional holding value.
func Some[T any](value T) Optional[T] {
	return Optional[T]{Set: true, Value: value}
}

// UnmarshalJSON implements json.Unmarshaler
func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Null = true
		var zero T
		o.Value = zero
		return nil
	}
	o.Null = false
	return json.Unmarshal(data, &o.Value)
}

// Present reports whether the field was sent with a non-null value.
func (o Optional[T]) Present() bool {
	return o.Set && !o.Null
}
