// SPDX-License-Identifier: MIT
// Package: lvconnect/conf
//
// dict.go - heterogeneous key-value dictionaries with access tracking.
//
// Contract:
//   - Values are the types produced by YAML/JSON decoding: bool, string,
//     int/int64/uint64, float64, []any and map[string]any.
//   - Every typed getter marks its key as accessed, even when it falls back
//     to the default. Unaccessed() lists keys nobody consumed, which lets a
//     consumer reject unknown parameters after it has read everything it
//     understands.
//   - A Dict is never mutated after construction, apart from the access set.
//     Clone returns a copy with a fresh access set.

package conf

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/katalvlaran/lvconnect/numerics"
)

// Sentinel errors for dictionary access.
var (
	// ErrMissingKey indicates that a required key is absent.
	ErrMissingKey = errors.New("conf: missing key")

	// ErrWrongType indicates a value that cannot be converted to the
	// requested type.
	ErrWrongType = errors.New("conf: wrong value type")
)

// Dict is a key-value configuration object.
type Dict struct {
	values   map[string]any
	accessed map[string]struct{}
}

// New copies m into a new Dict. A nil map yields an empty Dict.
func New(m map[string]any) *Dict {
	d := &Dict{
		values:   make(map[string]any, len(m)),
		accessed: make(map[string]struct{}),
	}
	for k, v := range m {
		d.values[k] = v
	}

	return d
}

// Clone returns a copy of d with an empty access set.
func (d *Dict) Clone() *Dict {
	if d == nil {
		return New(nil)
	}

	return New(d.values)
}

// With returns a copy of d where key is set to value.
func (d *Dict) With(key string, value any) *Dict {
	c := d.Clone()
	c.values[key] = value

	return c
}

// Len returns the number of entries.
func (d *Dict) Len() int {
	if d == nil {
		return 0
	}

	return len(d.values)
}

// Keys returns all keys in sorted order.
func (d *Dict) Keys() []string {
	if d == nil {
		return nil
	}
	keys := make([]string, 0, len(d.values))
	for k := range d.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

// Has reports whether key is present. It does not mark the key.
func (d *Dict) Has(key string) bool {
	if d == nil {
		return false
	}
	_, ok := d.values[key]

	return ok
}

// Value returns the raw value of key and marks it accessed.
func (d *Dict) Value(key string) (any, bool) {
	if d == nil {
		return nil, false
	}
	d.accessed[key] = struct{}{}
	v, ok := d.values[key]

	return v, ok
}

// Touch marks keys as accessed without reading them.
func (d *Dict) Touch(keys ...string) {
	if d == nil {
		return
	}
	for _, k := range keys {
		d.accessed[k] = struct{}{}
	}
}

// Unaccessed returns, sorted, the keys no getter has touched.
func (d *Dict) Unaccessed() []string {
	if d == nil {
		return nil
	}
	var out []string
	for k := range d.values {
		if _, ok := d.accessed[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)

	return out
}

// Raw returns a shallow copy of the underlying map.
func (d *Dict) Raw() map[string]any {
	out := make(map[string]any, d.Len())
	if d != nil {
		for k, v := range d.values {
			out[k] = v
		}
	}

	return out
}

// String returns the string value of key, or def if absent.
func (d *Dict) String(key, def string) (string, error) {
	v, ok := d.Value(key)
	if !ok {
		return def, nil
	}
	s, isStr := v.(string)
	if !isStr {
		return def, fmt.Errorf("%q: want string, got %T: %w", key, v, ErrWrongType)
	}

	return s, nil
}

// RequireString returns the string value of key or ErrMissingKey.
func (d *Dict) RequireString(key string) (string, error) {
	if !d.Has(key) {
		d.Touch(key)
		return "", fmt.Errorf("%q: %w", key, ErrMissingKey)
	}

	return d.String(key, "")
}

// Bool returns the boolean value of key, or def if absent.
func (d *Dict) Bool(key string, def bool) (bool, error) {
	v, ok := d.Value(key)
	if !ok {
		return def, nil
	}
	b, isBool := v.(bool)
	if !isBool {
		return def, fmt.Errorf("%q: want bool, got %T: %w", key, v, ErrWrongType)
	}

	return b, nil
}

// Float returns the numeric value of key as float64, or def if absent.
func (d *Dict) Float(key string, def float64) (float64, error) {
	v, ok := d.Value(key)
	if !ok {
		return def, nil
	}
	f, err := ToFloat(v)
	if err != nil {
		return def, fmt.Errorf("%q: %w", key, err)
	}

	return f, nil
}

// RequireFloat returns the numeric value of key or ErrMissingKey.
func (d *Dict) RequireFloat(key string) (float64, error) {
	if !d.Has(key) {
		d.Touch(key)
		return 0, fmt.Errorf("%q: %w", key, ErrMissingKey)
	}

	return d.Float(key, 0)
}

// Int returns the integral value of key, or def if absent. Floats are
// accepted when they hold an integer value.
func (d *Dict) Int(key string, def int) (int, error) {
	v, ok := d.Value(key)
	if !ok {
		return def, nil
	}
	n, err := ToInt(v)
	if err != nil {
		return def, fmt.Errorf("%q: %w", key, err)
	}

	return n, nil
}

// RequireInt returns the integral value of key or ErrMissingKey.
func (d *Dict) RequireInt(key string) (int, error) {
	if !d.Has(key) {
		d.Touch(key)
		return 0, fmt.Errorf("%q: %w", key, ErrMissingKey)
	}

	return d.Int(key, 0)
}

// Sub returns the nested dictionary stored under key.
func (d *Dict) Sub(key string) (*Dict, bool, error) {
	v, ok := d.Value(key)
	if !ok {
		return nil, false, nil
	}
	m, isMap := AsMap(v)
	if !isMap {
		return nil, true, fmt.Errorf("%q: want dictionary, got %T: %w", key, v, ErrWrongType)
	}

	return New(m), true, nil
}

// ToFloat converts a decoded numeric value to float64.
func ToFloat(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case int32:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case uint:
		return float64(x), nil
	}

	return 0, fmt.Errorf("want number, got %T: %w", v, ErrWrongType)
}

// ToInt converts a decoded numeric value to int; non-integral floats fail.
func ToInt(v any) (int, error) {
	switch x := v.(type) {
	case int:
		return x, nil
	case int64:
		return int(x), nil
	case int32:
		return int(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("integer %d overflows: %w", x, ErrWrongType)
		}
		return int(x), nil
	case uint:
		return int(x), nil
	case float64:
		if !numerics.IsInteger(x) || math.Abs(x) > math.MaxInt64 {
			return 0, fmt.Errorf("want integer, got %v: %w", x, ErrWrongType)
		}
		return int(numerics.LdRound(x)), nil
	}

	return 0, fmt.Errorf("want integer, got %T: %w", v, ErrWrongType)
}

// AsMap converts decoded dictionaries (map[string]any, map[any]any, *Dict)
// into map[string]any.
func AsMap(v any) (map[string]any, bool) {
	switch m := v.(type) {
	case map[string]any:
		return m, true
	case *Dict:
		return m.Raw(), true
	case map[any]any:
		out := make(map[string]any, len(m))
		for k, val := range m {
			ks, ok := k.(string)
			if !ok {
				return nil, false
			}
			out[ks] = val
		}
		return out, true
	}

	return nil, false
}

// AsFloats converts a decoded list of numbers into []float64.
func AsFloats(v any) ([]float64, bool) {
	switch xs := v.(type) {
	case []float64:
		out := make([]float64, len(xs))
		copy(out, xs)
		return out, true
	case []int:
		out := make([]float64, len(xs))
		for i, x := range xs {
			out[i] = float64(x)
		}
		return out, true
	case []any:
		out := make([]float64, len(xs))
		for i, x := range xs {
			f, err := ToFloat(x)
			if err != nil {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}

	return nil, false
}
