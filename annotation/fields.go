package annotation

import (
	"fmt"
	"sort"
)

// Fields are the named values of an annotation payload
type Fields map[string]interface{}

// FieldError is returned when a field has an unexpected type
type FieldError struct {
	Field string
	Want  string
	Got   interface{}
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("field %s: expected %s but got %T", e.Field, e.Want, e.Got)
}

// Has returns true if key is present with a non nil value
func (f Fields) Has(key string) bool {
	v, ok := f[key]
	return ok && v != nil
}

// String returns a scalar field as a string
func (f Fields) String(key string) (string, bool, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return "", false, nil
	}
	switch x := v.(type) {
	case string:
		return x, true, nil
	case bool, int, int64, uint64, float64:
		return fmt.Sprint(x), true, nil
	}
	return "", false, &FieldError{Field: key, Want: "scalar", Got: v}
}

// Strings returns a sequence field. A single scalar is a sequence of one.
func (f Fields) Strings(key string) ([]string, bool, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	list, ok := v.([]interface{})
	if !ok {
		s, present, err := f.String(key)
		if err != nil {
			return nil, false, &FieldError{Field: key, Want: "sequence", Got: v}
		}
		return []string{s}, present, nil
	}
	values := make([]string, 0, len(list))
	for _, item := range list {
		switch x := item.(type) {
		case string:
			values = append(values, x)
		case bool, int, int64, uint64, float64:
			values = append(values, fmt.Sprint(x))
		default:
			return nil, false, &FieldError{Field: key, Want: "sequence of scalars", Got: item}
		}
	}
	return values, true, nil
}

// Bool returns a boolean field
func (f Fields) Bool(key string) (bool, bool, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return false, false, nil
	}
	b, ok := v.(bool)
	if !ok {
		return false, false, &FieldError{Field: key, Want: "bool", Got: v}
	}
	return b, true, nil
}

// Map returns a mapping field
func (f Fields) Map(key string) (map[string]interface{}, bool, error) {
	v, ok := f[key]
	if !ok || v == nil {
		return nil, false, nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil, false, &FieldError{Field: key, Want: "mapping", Got: v}
	}
	return m, true, nil
}

// StringMap returns a mapping field whose values are scalars
func (f Fields) StringMap(key string) (map[string]string, bool, error) {
	m, ok, err := f.Map(key)
	if !ok || err != nil {
		return nil, ok, err
	}
	values := make(map[string]string, len(m))
	for k, v := range m {
		switch x := v.(type) {
		case string:
			values[k] = x
		case bool, int, int64, uint64, float64:
			values[k] = fmt.Sprint(x)
		default:
			return nil, false, &FieldError{Field: key + "." + k, Want: "scalar", Got: v}
		}
	}
	return values, true, nil
}

// Rest returns the fields whose keys are not listed
func (f Fields) Rest(known ...string) map[string]interface{} {
	skip := make(map[string]bool, len(known))
	for _, k := range known {
		skip[k] = true
	}
	rest := make(map[string]interface{})
	for k, v := range f {
		if !skip[k] {
			rest[k] = v
		}
	}
	return rest
}

// Keys returns the field names sorted
func (f Fields) Keys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
