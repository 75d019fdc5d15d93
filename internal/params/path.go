package params

import (
	"fmt"
	"strings"

	"github.com/ohler55/ojg/jp"
)

// IsPath reports whether key is a JSONPath expression rather than a plain key.
func IsPath(key string) bool {
	return strings.HasPrefix(strings.TrimSpace(key), "$")
}

// PathKey returns the parameter key a plain key or JSONPath addresses.
func PathKey(key string) (string, error) {
	if !IsPath(key) {
		return strings.TrimSpace(key), nil
	}
	k, _, err := splitPath(key)
	return k, err
}

// splitPath parses path and returns its top-level key and the remaining
// selectors, the key's own child included.
func splitPath(path string) (string, jp.Expr, error) {
	x, err := jp.ParseString(strings.TrimSpace(path))
	if err != nil {
		return "", nil, fmt.Errorf("path %q: %w", path, err)
	}
	if len(x) > 0 {
		if _, ok := x[0].(jp.Root); ok {
			x = x[1:]
		}
	}
	if len(x) == 0 {
		return "", nil, fmt.Errorf("path %q: no parameter key", path)
	}
	child, ok := x[0].(jp.Child)
	if !ok {
		return "", nil, fmt.Errorf("path %q: must start with a parameter key", path)
	}
	return string(child), x, nil
}

// WithPath returns a copy of s with the element addressed by a JSONPath
// such as $.Bearing_Base_Stiffness[0][2] replaced by v. The top-level value keeps
// its typed shape ([]float64, []int or [][]float64) after the patch.
func (s Set) WithPath(path string, v any) (Set, error) {
	key, x, err := splitPath(path)
	if err != nil {
		return Set{}, err
	}
	if len(x) == 1 {
		return s.With(key, v), nil
	}

	cur, err := s.lookup(key)
	if err != nil {
		return Set{}, err
	}
	root := map[string]any{key: Generic(cur)}
	full := append(jp.Expr{jp.Child(key)}, x[1:]...)
	if len(full.Get(root)) == 0 {
		return Set{}, fmt.Errorf("path %q: no element at this path", path)
	}
	if err := full.Set(root, Generic(v)); err != nil {
		return Set{}, fmt.Errorf("path %q: %w", path, err)
	}

	patched := root[key]
	switch cur.(type) {
	case []float64:
		if list, ok := toFloats(patched); ok {
			return s.With(key, list), nil
		}
	case []int:
		if list, ok := toFloats(patched); ok {
			ints := make([]int, len(list))
			for i, f := range list {
				n, ok := toInt(f)
				if !ok {
					return Set{}, &ValueError{Key: key, Want: "list of integers", Got: patched}
				}
				ints[i] = n
			}
			return s.With(key, ints), nil
		}
	case [][]float64:
		if m, ok := toMatrix(patched); ok {
			return s.With(key, m), nil
		}
	}
	return s.With(key, patched), nil
}
