package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Record is the flat storage shape of an entity: field name to primitive
// value.  Collections in the persistence gateway are lists of records, and
// every entity converts to and from one without losing fields.
type Record map[string]any

// Clone returns a shallow copy.  Values are primitives, so the copy is
// independent of the original.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

func (r Record) str(key string) (string, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return "", fmt.Errorf("%w: missing field %q", ErrInvalidRecord, key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q is %T, want string", ErrInvalidRecord, key, v)
	}
	return s, nil
}

// optStr returns "" for a missing or null field.
func (r Record) optStr(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

func (r Record) float(key string) (float64, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return 0, fmt.Errorf("%w: missing field %q", ErrInvalidRecord, key)
	}
	switch t := v.(type) {
	case float64:
		return t, nil
	case float32:
		return float64(t), nil
	case int:
		return float64(t), nil
	case int64:
		return float64(t), nil
	case json.Number:
		return t.Float64()
	case string:
		return strconv.ParseFloat(t, 64)
	}
	return 0, fmt.Errorf("%w: field %q is %T, want number", ErrInvalidRecord, key, v)
}

func (r Record) integer(key string) (int, error) {
	f, err := r.float(key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, fmt.Errorf("%w: field %q is not an integer", ErrInvalidRecord, key)
	}
	return int(f), nil
}

// boolean also accepts 0/1, which is how relational stores without a
// native boolean type hand the flag back.
func (r Record) boolean(key string) (bool, error) {
	v, ok := r[key]
	if !ok || v == nil {
		return false, fmt.Errorf("%w: missing field %q", ErrInvalidRecord, key)
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	n, err := r.integer(key)
	if err != nil {
		return false, fmt.Errorf("%w: field %q is %T, want bool", ErrInvalidRecord, key, v)
	}
	return n != 0, nil
}
