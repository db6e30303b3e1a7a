package ir

import (
	"bytes"
	"fmt"
	"slices"
	"unicode/utf16"

	"golang.org/x/text/unicode/norm"
)

// MarshalCanonical produces RFC 8785 canonical JSON. This is the only
// serialization used for content-addressed identity (snapshot keys,
// golden files), so it must stay byte-stable:
//
//  1. Object keys sorted by UTF-16 code units (not UTF-8 bytes).
//  2. No HTML escaping (< > & written literally).
//  3. Strings NFC-normalized.
//  4. No floats, no null.
//
// Accepts Value, plain Go primitives, []any, and map[string]any.
func MarshalCanonical(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalCanonical(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalCanonical(buf *bytes.Buffer, v any) error {
	switch val := v.(type) {
	case nil:
		return fmt.Errorf("null is forbidden in canonical JSON")
	case Str:
		marshalCanonicalString(buf, string(val))
		return nil
	case Int:
		fmt.Fprintf(buf, "%d", int64(val))
		return nil
	case Bool:
		return marshalCanonical(buf, bool(val))
	case List:
		return marshalCanonicalList(buf, []Value(val))
	case Rec:
		keys := SortedKeys(val)
		items := make([]keyedItem, len(keys))
		for i, k := range keys {
			items[i] = keyedItem{k, val[k]}
		}
		return marshalCanonicalObject(buf, items)
	case string:
		marshalCanonicalString(buf, val)
		return nil
	case int:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case int64:
		fmt.Fprintf(buf, "%d", val)
		return nil
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case float32, float64:
		return fmt.Errorf("floats are forbidden in canonical JSON: %v", val)
	case []any:
		buf.WriteByte('[')
		for i, elem := range val {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := marshalCanonical(buf, elem); err != nil {
				return fmt.Errorf("array[%d]: %w", i, err)
			}
		}
		buf.WriteByte(']')
		return nil
	case map[string]any:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		slices.SortFunc(keys, compareKeysRFC8785)
		items := make([]keyedItem, len(keys))
		for i, k := range keys {
			items[i] = keyedItem{k, val[k]}
		}
		return marshalCanonicalObject(buf, items)
	default:
		return fmt.Errorf("unsupported type for canonical JSON: %T", v)
	}
}

type keyedItem struct {
	key string
	val any
}

func marshalCanonicalList(buf *bytes.Buffer, vals []Value) error {
	buf.WriteByte('[')
	for i, elem := range vals {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalCanonical(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalCanonicalObject(buf *bytes.Buffer, items []keyedItem) error {
	buf.WriteByte('{')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		marshalCanonicalString(buf, item.key)
		buf.WriteByte(':')
		if err := marshalCanonical(buf, item.val); err != nil {
			return fmt.Errorf("object[%q]: %w", item.key, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// marshalCanonicalString writes an RFC 8785 canonical JSON string:
// NFC-normalized, with only quote, backslash, and control characters
// below U+0020 escaped. U+2028/U+2029 and HTML characters are written
// literally, which is why encoding/json is not used here.
func marshalCanonicalString(buf *bytes.Buffer, s string) {
	s = norm.NFC.String(s)
	buf.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\f':
			buf.WriteString(`\f`)
		case '\n':
			buf.WriteString(`\n`)
		case '\r':
			buf.WriteString(`\r`)
		case '\t':
			buf.WriteString(`\t`)
		default:
			if r < 0x20 {
				fmt.Fprintf(buf, `\u%04x`, r)
			} else {
				buf.WriteRune(r)
			}
		}
	}
	buf.WriteByte('"')
}

// SortedKeys returns record keys in RFC 8785 canonical order (UTF-16
// code units). Go's sort.Strings compares UTF-8 bytes, which produces a
// different order for strings outside the BMP.
func SortedKeys(rec Rec) []string {
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	slices.SortFunc(keys, compareKeysRFC8785)
	return keys
}

func compareKeysRFC8785(a, b string) int {
	a16 := utf16.Encode([]rune(a))
	b16 := utf16.Encode([]rune(b))

	n := min(len(a16), len(b16))
	for i := 0; i < n; i++ {
		if a16[i] != b16[i] {
			if a16[i] < b16[i] {
				return -1
			}
			return 1
		}
	}
	if len(a16) < len(b16) {
		return -1
	}
	if len(a16) > len(b16) {
		return 1
	}
	return 0
}

func sortStrings(keys []string) {
	slices.SortFunc(keys, compareKeysRFC8785)
}
