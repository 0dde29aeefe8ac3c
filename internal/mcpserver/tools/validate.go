package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sort"
	"strings"
)

// Validate checks raw arguments against a parameter schema.
//
// Checks run in a fixed order: required parameters, value shapes, defaults,
// then undeclared keys. The first violation is returned as a *ValidationError.
// raw is never modified; the returned Arguments is a fresh map.
func Validate(params []Param, raw map[string]any) (Arguments, error) {
	for _, p := range params {
		if !p.Required {
			continue
		}
		if v, ok := raw[p.Name]; !ok || v == nil {
			return nil, missingParameter(p.Name)
		}
	}

	args := make(Arguments, len(params))
	for _, p := range params {
		v, ok := raw[p.Name]
		if !ok || v == nil {
			continue
		}
		coerced, verr := coerce(p, p.Name, v)
		if verr != nil {
			return nil, verr
		}
		args[p.Name] = coerced
	}

	for _, p := range params {
		if _, set := args[p.Name]; set || p.Default == nil {
			continue
		}
		// Defaults were checked at registration
		coerced, _ := coerce(p, p.Name, p.Default)
		args[p.Name] = coerced
	}

	if len(raw) > 0 {
		var unexpected []string
		for name := range raw {
			if !declared(params, name) {
				unexpected = append(unexpected, name)
			}
		}
		if len(unexpected) > 0 {
			sort.Strings(unexpected)
			return nil, unexpectedParameter(unexpected[0])
		}
	}

	return args, nil
}

func declared(params []Param, name string) bool {
	for _, p := range params {
		if p.Name == name {
			return true
		}
	}
	return false
}

// coerce checks v against p and returns it in canonical form
func coerce(p Param, path string, v any) (any, *ValidationError) {
	switch p.Kind {
	case KindString:
		if s, ok := v.(string); ok {
			return s, nil
		}
		return nil, typeMismatch(path, "string", describe(v))

	case KindEnum:
		s, ok := v.(string)
		if !ok || !slices.Contains(p.Enum, s) {
			actual := describe(v)
			if ok {
				actual = fmt.Sprintf("%q", s)
			}
			return nil, typeMismatch(path, "one of ["+strings.Join(p.Enum, ", ")+"]", actual)
		}
		return s, nil

	case KindBoolean:
		if b, ok := v.(bool); ok {
			return b, nil
		}
		return nil, typeMismatch(path, "boolean", describe(v))

	case KindNumber:
		if f, ok := toFloat(v); ok {
			return f, nil
		}
		return nil, typeMismatch(path, "number", describe(v))

	case KindInteger:
		if n, ok := toInt(v); ok {
			return n, nil
		}
		return nil, typeMismatch(path, "integer", describe(v))

	case KindObject:
		m, ok := v.(map[string]any)
		if !ok {
			return nil, typeMismatch(path, "object", describe(v))
		}
		out := make(map[string]any, len(m))
		for k, val := range m {
			out[k] = val
		}
		return out, nil

	case KindArray:
		items, ok := toSlice(v)
		if !ok {
			return nil, typeMismatch(path, "array", describe(v))
		}
		out := make([]any, len(items))
		for i, item := range items {
			if p.Items == nil {
				out[i] = item
				continue
			}
			itemPath := fmt.Sprintf("%s[%d]", path, i)
			if item == nil {
				return nil, typeMismatch(itemPath, expectedName(*p.Items), "null")
			}
			coerced, verr := coerce(*p.Items, itemPath, item)
			if verr != nil {
				return nil, verr
			}
			out[i] = coerced
		}
		return out, nil
	}

	return nil, typeMismatch(path, string(p.Kind), describe(v))
}

func expectedName(p Param) string {
	if p.Kind == KindEnum {
		return "one of [" + strings.Join(p.Enum, ", ") + "]"
	}
	return string(p.Kind)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func toInt(v any) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		if n != math.Trunc(n) || math.IsInf(n, 0) || n >= math.MaxInt64 || n < math.MinInt64 {
			return 0, false
		}
		return int64(n), true
	case float32:
		return toInt(float64(n))
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	}
	return 0, false
}

func toSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []string:
		out := make([]any, len(s))
		for i, item := range s {
			out[i] = item
		}
		return out, true
	}
	return nil, false
}

// describe names the JSON shape of a decoded value for error messages
func describe(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case string:
		return "string"
	case bool:
		return "boolean"
	case float64, float32, int, int32, int64, json.Number:
		return "number"
	case []any, []string:
		return "array"
	case map[string]any:
		return "object"
	}
	return fmt.Sprintf("%T", v)
}
