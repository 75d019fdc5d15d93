package params

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
)

// Type is the declared type of a spreadsheet cell.
type Type string

const (
	TypeAuto       Type = ""
	TypeFloat      Type = "float"
	TypeInt        Type = "int"
	TypeString     Type = "str"
	TypeBool       Type = "bool"
	TypeFloatList  Type = "list[float]"
	TypeIntList    Type = "list[int]"
	TypeStringList Type = "list[str]"
	TypeJSON       Type = "json"
)

var typeAliases = map[string]Type{
	"":             TypeAuto,
	"auto":         TypeAuto,
	"float":        TypeFloat,
	"number":       TypeFloat,
	"double":       TypeFloat,
	"int":          TypeInt,
	"integer":      TypeInt,
	"str":          TypeString,
	"string":       TypeString,
	"text":         TypeString,
	"bool":         TypeBool,
	"boolean":      TypeBool,
	"list[float]":  TypeFloatList,
	"list[number]": TypeFloatList,
	"list":         TypeFloatList,
	"list[int]":    TypeIntList,
	"list[str]":    TypeStringList,
	"json":         TypeJSON,
	"dict":         TypeJSON,
}

// ParseType normalizes a declared type name such as "integer" or "List[Float]".
func ParseType(name string) (Type, error) {
	t, ok := typeAliases[strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", ""))]
	if !ok {
		return "", fmt.Errorf("unknown value type %q", name)
	}
	return t, nil
}

var (
	trueTokens  = map[string]bool{"1": true, "true": true, "t": true, "yes": true, "y": true, "on": true}
	falseTokens = map[string]bool{"0": true, "false": true, "f": true, "no": true, "n": true, "off": true}
)

var errNotNumber = errors.New("not a number")

// Parse converts raw cell text to a typed value. Failures are returned as
// *ParseError with Raw and Type set; callers fill in the location.
func Parse(raw string, t Type) (any, error) {
	text := strings.TrimSpace(raw)
	v, err := parse(text, t)
	if err != nil {
		return nil, &ParseError{Type: t, Raw: raw, Err: err}
	}
	return v, nil
}

func parse(text string, t Type) (any, error) {
	switch t {
	case TypeAuto:
		if f, err := parseFloat(text); err == nil {
			return f, nil
		}
		return text, nil
	case TypeString:
		return text, nil
	case TypeFloat:
		return parseFloat(text)
	case TypeInt:
		return parseInt(text)
	case TypeBool:
		low := strings.ToLower(text)
		switch {
		case trueTokens[low]:
			return true, nil
		case falseTokens[low]:
			return false, nil
		}
		return nil, errors.New("not a boolean token")
	case TypeFloatList:
		return parseList(text, parseFloat)
	case TypeIntList:
		return parseList(text, parseInt)
	case TypeStringList:
		return parseStrings(text)
	case TypeJSON:
		v, err := oj.ParseString(text)
		if err != nil {
			return nil, err
		}
		return normalizeJSON(v), nil
	}
	return nil, fmt.Errorf("unsupported type %q", string(t))
}

func parseFloat(text string) (float64, error) {
	if text == "" {
		return 0, errNotNumber
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	return f, nil
}

func parseInt(text string) (int, error) {
	f, err := parseFloat(text)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, errors.New("fractional value for integer")
	}
	if f < math.MinInt || f >= math.MaxInt {
		return 0, errors.New("integer out of range")
	}
	return int(f), nil
}

func parseList[T any](text string, elem func(string) (T, error)) ([]T, error) {
	out := []T{}
	if text == "" {
		return out, nil
	}
	if strings.HasPrefix(text, "[") {
		v, err := oj.ParseString(text)
		if err != nil {
			return nil, err
		}
		items, ok := v.([]any)
		if !ok {
			return nil, errors.New("not a JSON array")
		}
		for i, item := range items {
			x, err := elem(jsonScalarText(item))
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", i, err)
			}
			out = append(out, x)
		}
		return out, nil
	}
	for i, part := range strings.Split(text, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		x, err := elem(part)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, x)
	}
	return out, nil
}

func parseStrings(text string) ([]string, error) {
	return parseList(text, func(s string) (string, error) { return strings.TrimSpace(s), nil })
}

func jsonScalarText(v any) string {
	switch t := v.(type) {
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	}
	return fmt.Sprint(v)
}

// normalizeJSON widens every JSON integer to float64 so that values parsed
// from a json cell compare equal to list cells holding the same numbers.
func normalizeJSON(v any) any {
	switch t := v.(type) {
	case int64:
		return float64(t)
	case []any:
		for i := range t {
			t[i] = normalizeJSON(t[i])
		}
		return t
	case map[string]any:
		for k := range t {
			t[k] = normalizeJSON(t[k])
		}
		return t
	}
	return v
}

// Format renders a typed value as cell text, the inverse of Parse for the
// list and json forms written into templates.
func Format(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int:
		return strconv.Itoa(t)
	case []float64, []int, []string, [][]float64, []any, map[string]any:
		return oj.JSON(Generic(v), &oj.Options{Sort: true})
	}
	return fmt.Sprint(v)
}

// TypeOf returns the declared type a template should carry for v.
func TypeOf(v any) Type {
	switch v.(type) {
	case float64, float32:
		return TypeFloat
	case int, int64:
		return TypeInt
	case bool:
		return TypeBool
	case string:
		return TypeString
	case []float64:
		return TypeFloatList
	case []int:
		return TypeIntList
	case []string:
		return TypeStringList
	}
	return TypeJSON
}

// Generic converts typed slices to the []any / map[string]any tree used by
// the JSON and JSONPath tooling. Numbers become float64.
func Generic(v any) any {
	switch t := v.(type) {
	case int:
		return float64(t)
	case int64:
		return float64(t)
	case []float64:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out
	case []int:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = float64(x)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = x
		}
		return out
	case [][]float64:
		out := make([]any, len(t))
		for i, row := range t {
			out[i] = Generic(row)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = Generic(x)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = Generic(x)
		}
		return out
	}
	return v
}
