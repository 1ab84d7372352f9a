package validation

import (
	"encoding/json"
	"reflect"
)

// Nullable distinguishes an absent JSON field from an explicit null, which
// PATCH endpoints need to tell "leave as is" from "clear".
type Nullable[T any] struct {
	Set   bool // the key was present
	Valid bool // the value was not null
	Value T
}

func (n *Nullable[T]) UnmarshalJSON(data []byte) error {
	n.Set = true
	if string(data) == "null" {
		n.Valid = false
		var zero T
		n.Value = zero
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// Ptr returns nil for null, a pointer to the value otherwise.
func (n Nullable[T]) Ptr() *T {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// nullableValue lets validator tags apply to the wrapped value; absent and
// null both yield nil so that omitempty skips them.
func nullableValue(field reflect.Value) interface{} {
	switch v := field.Interface().(type) {
	case Nullable[int]:
		if v.Valid {
			return v.Value
		}
	case Nullable[float64]:
		if v.Valid {
			return v.Value
		}
	case Nullable[string]:
		if v.Valid {
			return v.Value
		}
	}
	return nil
}
