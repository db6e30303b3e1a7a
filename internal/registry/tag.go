package registry

// Tag is the runtime type tag of a raw construction argument, the key
// into the lift table.
type Tag string

const (
	TagInt  Tag = "int"
	TagStr  Tag = "string"
	TagBool Tag = "bool"
)

// TagOf classifies a raw value. The second result is false for values
// no lift table could ever name (floats, nil, arbitrary structs);
// whether a recognized tag actually lifts is the registry's call.
func TagOf(v any) (Tag, bool) {
	switch v.(type) {
	case int, int64:
		return TagInt, true
	case string:
		return TagStr, true
	case bool:
		return TagBool, true
	default:
		return "", false
	}
}
