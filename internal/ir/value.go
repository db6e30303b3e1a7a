package ir

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Value is a sealed interface over the literal values an entry may carry.
// Only Str, Int, Bool, List, and Rec implement it. Floats are excluded:
// they break the determinism of canonical hashing, and no core kind
// produces one.
type Value interface {
	value()
}

// Str is a string literal.
type Str string

func (Str) value() {}

// Int is an integer literal. Always int64.
type Int int64

func (Int) value() {}

// Bool is a boolean literal.
type Bool bool

func (Bool) value() {}

// List is an ordered sequence of values.
type List []Value

func (List) value() {}

// Rec is a string-keyed record of values.
type Rec map[string]Value

func (Rec) value() {}

// FromGo converts a raw Go value to a Value.
// Accepted: string, bool, int/int64, []any, map[string]any, and Value
// itself. Floats and nil are rejected.
func FromGo(v any) (Value, error) {
	switch val := v.(type) {
	case nil:
		return nil, fmt.Errorf("nil has no literal representation")
	case Value:
		return val, nil
	case string:
		return Str(val), nil
	case bool:
		return Bool(val), nil
	case int:
		return Int(val), nil
	case int64:
		return Int(val), nil
	case float32, float64:
		return nil, fmt.Errorf("floats have no literal representation: %v", val)
	case []any:
		out := make(List, len(val))
		for i, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	case map[string]any:
		out := make(Rec, len(val))
		for k, elem := range val {
			conv, err := FromGo(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = conv
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported literal type: %T", v)
	}
}

// FromJSON converts a value decoded by encoding/json to a Value.
// Unlike FromGo it accepts json.Number and whole float64 values, since
// encoding/json has no integer type. Fractional numbers are rejected.
func FromJSON(v any) (Value, error) {
	switch val := v.(type) {
	case json.Number:
		n, err := val.Int64()
		if err != nil {
			return nil, fmt.Errorf("non-integer number: %s", val)
		}
		return Int(n), nil
	case float64:
		if val != float64(int64(val)) {
			return nil, fmt.Errorf("non-integer number: %v", val)
		}
		return Int(int64(val)), nil
	case []any:
		out := make(List, len(val))
		for i, elem := range val {
			conv, err := FromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = conv
		}
		return out, nil
	case map[string]any:
		out := make(Rec, len(val))
		for k, elem := range val {
			conv, err := FromJSON(elem)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = conv
		}
		return out, nil
	default:
		return FromGo(v)
	}
}

// Format renders a value for CLI output and error messages.
// Not a serialization format; use MarshalCanonical for that.
func Format(v Value) string {
	switch val := v.(type) {
	case nil:
		return "<unset>"
	case Str:
		return fmt.Sprintf("%q", string(val))
	case Int:
		return fmt.Sprintf("%d", int64(val))
	case Bool:
		return fmt.Sprintf("%t", bool(val))
	case List:
		parts := make([]string, len(val))
		for i, elem := range val {
			parts[i] = Format(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Rec:
		keys := SortedKeys(val)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + Format(val[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return fmt.Sprintf("<%T>", v)
	}
}
