// Package params holds the flat, typed parameter mapping that drives one
// bridge analysis run, together with its defaults, typed cell parsing and
// the section/bearing values derived from primary inputs.
package params

import (
	"fmt"
	"math"
	"sort"
)

// Set is an immutable parameter mapping. Every method that changes a value
// returns a new Set; the receiver is left untouched, so one base Set can be
// reused for many cases in the same run.
type Set struct {
	values map[string]any
}

// New builds a Set from a plain map. The map is deep-copied.
func New(values map[string]any) Set {
	s := Set{values: make(map[string]any, len(values))}
	for k, v := range values {
		s.values[k] = cloneValue(v)
	}
	return s
}

// Len returns the number of keys.
func (s Set) Len() int { return len(s.values) }

// Has reports whether key is present with a non-nil value.
func (s Set) Has(key string) bool {
	v, ok := s.values[key]
	return ok && v != nil
}

// Get returns a copy of the raw value stored under key.
func (s Set) Get(key string) (any, bool) {
	v, ok := s.values[key]
	if !ok {
		return nil, false
	}
	return cloneValue(v), true
}

// Keys returns all keys in sorted order.
func (s Set) Keys() []string {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a deep copy of the mapping.
func (s Set) Map() map[string]any {
	out := make(map[string]any, len(s.values))
	for k, v := range s.values {
		out[k] = cloneValue(v)
	}
	return out
}

// With returns a copy of s with key set to v.
func (s Set) With(key string, v any) Set {
	out := s.clone()
	out.values[key] = cloneValue(v)
	return out
}

// Merge returns a copy of s overlaid with every entry of values.
func (s Set) Merge(values map[string]any) Set {
	out := s.clone()
	for k, v := range values {
		out.values[k] = cloneValue(v)
	}
	return out
}

// Without returns a copy of s with key removed.
func (s Set) Without(key string) Set {
	out := s.clone()
	delete(out.values, key)
	return out
}

func (s Set) clone() Set {
	out := Set{values: make(map[string]any, len(s.values)+1)}
	for k, v := range s.values {
		out.values[k] = cloneValue(v)
	}
	return out
}

func (s Set) lookup(key string) (any, error) {
	v, ok := s.values[key]
	if !ok || v == nil {
		return nil, &MissingParameterError{Keys: []string{key}}
	}
	return v, nil
}

// Float returns key as a float64. Integers are widened and a one-element
// list is unwrapped (older templates stored girder_spacing as [2.08]).
func (s Set) Float(key string) (float64, error) {
	v, err := s.lookup(key)
	if err != nil {
		return 0, err
	}
	if f, ok := toFloat(v); ok {
		return f, nil
	}
	if list, ok := toFloats(v); ok && len(list) == 1 {
		return list[0], nil
	}
	return 0, &ValueError{Key: key, Want: "number", Got: v}
}

// FloatOr returns key as a float64, or def when the key is absent.
func (s Set) FloatOr(key string, def float64) (float64, error) {
	if !s.Has(key) {
		return def, nil
	}
	return s.Float(key)
}

// Int returns key as an int. Floats are accepted only when integral.
func (s Set) Int(key string) (int, error) {
	v, err := s.lookup(key)
	if err != nil {
		return 0, err
	}
	if i, ok := toInt(v); ok {
		return i, nil
	}
	return 0, &ValueError{Key: key, Want: "integer", Got: v}
}

// IntOr returns key as an int, or def when the key is absent.
func (s Set) IntOr(key string, def int) (int, error) {
	if !s.Has(key) {
		return def, nil
	}
	return s.Int(key)
}

// String returns key as a string.
func (s Set) String(key string) (string, error) {
	v, err := s.lookup(key)
	if err != nil {
		return "", err
	}
	switch t := v.(type) {
	case string:
		return t, nil
	case fmt.Stringer:
		return t.String(), nil
	}
	return "", &ValueError{Key: key, Want: "string", Got: v}
}

// StringOr returns key as a string, or def when the key is absent.
func (s Set) StringOr(key, def string) (string, error) {
	if !s.Has(key) {
		return def, nil
	}
	return s.String(key)
}

// Bool returns key as a bool.
func (s Set) Bool(key string) (bool, error) {
	v, err := s.lookup(key)
	if err != nil {
		return false, err
	}
	if b, ok := v.(bool); ok {
		return b, nil
	}
	return false, &ValueError{Key: key, Want: "bool", Got: v}
}

// Floats returns key as a []float64 copy.
func (s Set) Floats(key string) ([]float64, error) {
	v, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	if list, ok := toFloats(v); ok {
		return list, nil
	}
	return nil, &ValueError{Key: key, Want: "list of numbers", Got: v}
}

// FloatsOr returns key as a []float64, or def when the key is absent.
func (s Set) FloatsOr(key string, def []float64) ([]float64, error) {
	if !s.Has(key) {
		return append([]float64(nil), def...), nil
	}
	return s.Floats(key)
}

// Ints returns key as a []int copy.
func (s Set) Ints(key string) ([]int, error) {
	v, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	list, ok := toFloats(v)
	if !ok {
		return nil, &ValueError{Key: key, Want: "list of integers", Got: v}
	}
	out := make([]int, len(list))
	for i, f := range list {
		if f != math.Trunc(f) {
			return nil, &ValueError{Key: key, Want: "list of integers", Got: v}
		}
		out[i] = int(f)
	}
	return out, nil
}

// Matrix returns key as a row-major [][]float64 copy.
func (s Set) Matrix(key string) ([][]float64, error) {
	v, err := s.lookup(key)
	if err != nil {
		return nil, err
	}
	if m, ok := toMatrix(v); ok {
		return m, nil
	}
	return nil, &ValueError{Key: key, Want: "table of numbers", Got: v}
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case int32:
		return float64(t), true
	}
	return 0, false
}

func toInt(v any) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case int32:
		return int(t), true
	case float64:
		if t == math.Trunc(t) && t >= math.MinInt && t < math.MaxInt {
			return int(t), true
		}
	}
	return 0, false
}

func toFloats(v any) ([]float64, bool) {
	switch t := v.(type) {
	case []float64:
		return append([]float64(nil), t...), true
	case []int:
		out := make([]float64, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out, true
	case []any:
		out := make([]float64, len(t))
		for i, x := range t {
			f, ok := toFloat(x)
			if !ok {
				return nil, false
			}
			out[i] = f
		}
		return out, true
	}
	return nil, false
}

func toMatrix(v any) ([][]float64, bool) {
	switch t := v.(type) {
	case [][]float64:
		out := make([][]float64, len(t))
		for i, row := range t {
			out[i] = append([]float64(nil), row...)
		}
		return out, true
	case []any:
		out := make([][]float64, len(t))
		for i, row := range t {
			r, ok := toFloats(row)
			if !ok {
				return nil, false
			}
			out[i] = r
		}
		return out, true
	}
	return nil, false
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case []float64:
		return append([]float64(nil), t...)
	case []int:
		return append([]int(nil), t...)
	case []string:
		return append([]string(nil), t...)
	case [][]float64:
		out := make([][]float64, len(t))
		for i, row := range t {
			out[i] = append([]float64(nil), row...)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = cloneValue(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = cloneValue(x)
		}
		return out
	}
	return v
}
