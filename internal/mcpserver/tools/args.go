package tools

import "fmt"

// Arguments is the validated argument payload handed to a Handler.
// Values are canonical: string, float64, int64, bool, []any or map[string]any.
type Arguments map[string]any

// Lookup returns the value for name and whether it is set
func (a Arguments) Lookup(name string) (any, bool) {
	v, ok := a[name]
	return v, ok
}

// Has reports whether name is set (present in the request or defaulted)
func (a Arguments) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// String returns a string argument or "" when unset
func (a Arguments) String(name string) string {
	s, _ := a[name].(string)
	return s
}

// Int returns an integer argument or 0 when unset
func (a Arguments) Int(name string) int64 {
	n, _ := a[name].(int64)
	return n
}

// Float returns a number argument or 0 when unset
func (a Arguments) Float(name string) float64 {
	f, _ := a[name].(float64)
	return f
}

// Bool returns a boolean argument or false when unset
func (a Arguments) Bool(name string) bool {
	b, _ := a[name].(bool)
	return b
}

// Strings returns an array argument as strings; non-string elements are formatted
func (a Arguments) Strings(name string) []string {
	items, ok := a[name].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s, ok := item.(string); ok {
			out = append(out, s)
			continue
		}
		out = append(out, fmt.Sprint(item))
	}
	return out
}

// Object returns an object argument or nil when unset
func (a Arguments) Object(name string) map[string]any {
	m, _ := a[name].(map[string]any)
	return m
}
