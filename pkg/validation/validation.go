// Package validation holds the structural predicates used to reject
// malformed input before it reaches a container.
//
// The predicates operate on loosely typed values as produced by
// encoding/json, gopkg.in/yaml.v3 or plain Go literals.
package validation

import (
	"encoding/json"
	"math"
	"reflect"
)

// HasKeys reports whether every key in keys is present in m.
func HasKeys(m map[string]any, keys []string) bool {
	return len(MissingKeys(m, keys)) == 0
}

// HasOnlyKeys reports whether m has exactly the given keys.
func HasOnlyKeys(m map[string]any, keys []string) bool {
	if len(m) != len(keys) {
		return false
	}
	return HasKeys(m, keys)
}

// MissingKeys returns the keys not found in m, in the order given.
func MissingKeys(m map[string]any, keys []string) []string {
	var missing []string
	for _, k := range keys {
		if _, ok := m[k]; !ok {
			missing = append(missing, k)
		}
	}
	return missing
}

// IsReal reports whether v is a real number. Booleans are not numbers.
func IsReal(v any) bool {
	switch n := v.(type) {
	case json.Number:
		_, err := n.Float64()
		return err == nil
	case bool, nil:
		return false
	}
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

// IsInteger reports whether v is an integral number. Floats with an
// integral value (as decoded from JSON) count as integers.
func IsInteger(v any) bool {
	_, ok := AsInt64(v)
	return ok
}

// AsInt64 converts an integral number to int64.
func AsInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, true
		}
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return floatToInt64(f)
	case bool, nil:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return 0, false
		}
		return int64(u), true
	case reflect.Float32, reflect.Float64:
		return floatToInt64(rv.Float())
	}
	return 0, false
}

func floatToInt64(f float64) (int64, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, false
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, false
	}
	return int64(f), true
}

// IsListOfStrings reports whether v is a list whose elements are all strings.
// An empty list qualifies.
func IsListOfStrings(v any) bool {
	switch l := v.(type) {
	case []string:
		return true
	case []any:
		for _, item := range l {
			if _, ok := item.(string); !ok {
				return false
			}
		}
		return true
	}
	return false
}

// IsJSONValue reports whether v can be represented in JSON without loss:
// nil, booleans, strings, finite numbers, and slices or string-keyed maps of those.
func IsJSONValue(v any) bool {
	if v == nil {
		return true
	}
	switch n := v.(type) {
	case json.Number:
		_, err := n.Float64()
		return err == nil
	case json.RawMessage:
		return json.Valid(n)
	}
	return isJSONReflect(reflect.ValueOf(v))
}

func isJSONReflect(rv reflect.Value) bool {
	switch rv.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Bool, reflect.String,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	case reflect.Float32, reflect.Float64:
		f := rv.Float()
		return !math.IsNaN(f) && !math.IsInf(f, 0)
	case reflect.Interface, reflect.Pointer:
		if rv.IsNil() {
			return true
		}
		return isJSONReflect(rv.Elem())
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			if !isJSONReflect(rv.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return false
		}
		iter := rv.MapRange()
		for iter.Next() {
			if !isJSONReflect(iter.Value()) {
				return false
			}
		}
		return true
	case reflect.Struct:
		// Structs marshal through their exported fields; trust encoding/json.
		_, err := json.Marshal(rv.Interface())
		return err == nil
	}
	return false
}
