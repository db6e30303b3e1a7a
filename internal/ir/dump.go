package ir

import (
	"encoding/json"
	"fmt"
)

// CanonicalDump converts an IR to the plain-map form consumed by
// MarshalCanonical. Entry ids appear as object keys, so the dump is
// deterministic for a given IR regardless of map iteration order.
//
// This is the serialization used for fingerprints, snapshot bodies, and
// golden files.
func (x IR) CanonicalDump() map[string]any {
	entries := make(map[string]any, len(x.Entries))
	for id, e := range x.Entries {
		entries[string(id)] = entryDump(e)
	}
	return map[string]any{
		"counter": x.Counter.Ordinal(),
		"entries": entries,
		"out":     string(x.Out),
		"root":    string(x.Root),
	}
}

func entryDump(e Entry) map[string]any {
	children := make([]any, len(e.Children))
	for i, ref := range e.Children {
		children[i] = refDump(ref)
	}
	dump := map[string]any{
		"children": children,
		"kind":     e.Kind,
	}
	if e.Out != nil {
		dump["out"] = e.Out
	}
	return dump
}

func refDump(ref Ref) any {
	switch rv := ref.(type) {
	case IDRef:
		return string(rv)
	case TupRef:
		out := make([]any, len(rv))
		for i, r := range rv {
			out[i] = refDump(r)
		}
		return out
	case RecRef:
		out := make(map[string]any, len(rv))
		for k, r := range rv {
			out[k] = refDump(r)
		}
		return out
	default:
		panic(fmt.Sprintf("unknown ref type: %T", ref))
	}
}

// ParseDump rebuilds an IR from a CanonicalDump-shaped map, as read back
// from the snapshot store. Inverse of CanonicalDump for valid input.
func ParseDump(dump map[string]any) (IR, error) {
	counter, err := intField(dump, "counter")
	if err != nil {
		return IR{}, err
	}
	root, err := strField(dump, "root")
	if err != nil {
		return IR{}, err
	}
	out, err := strField(dump, "out")
	if err != nil {
		return IR{}, err
	}
	rawEntries, ok := dump["entries"].(map[string]any)
	if !ok {
		return IR{}, fmt.Errorf("dump: entries is not an object")
	}

	entries := make(map[NodeID]Entry, len(rawEntries))
	for id, raw := range rawEntries {
		entryMap, ok := raw.(map[string]any)
		if !ok {
			return IR{}, fmt.Errorf("dump: entry %q is not an object", id)
		}
		e, err := parseEntryDump(entryMap)
		if err != nil {
			return IR{}, fmt.Errorf("dump: entry %q: %w", id, err)
		}
		entries[NodeID(id)] = e
	}

	return IR{
		Root:    NodeID(root),
		Entries: entries,
		Counter: NewCounter(counter),
		Out:     Type(out),
	}, nil
}

func parseEntryDump(m map[string]any) (Entry, error) {
	kind, err := strField(m, "kind")
	if err != nil {
		return Entry{}, err
	}
	rawChildren, ok := m["children"].([]any)
	if !ok {
		return Entry{}, fmt.Errorf("children is not an array")
	}
	children := make([]Ref, len(rawChildren))
	for i, raw := range rawChildren {
		ref, err := parseRefDump(raw)
		if err != nil {
			return Entry{}, fmt.Errorf("children[%d]: %w", i, err)
		}
		children[i] = ref
	}
	e := Entry{Kind: kind, Children: children}
	if rawOut, exists := m["out"]; exists {
		out, err := FromJSON(rawOut)
		if err != nil {
			return Entry{}, fmt.Errorf("out: %w", err)
		}
		e.Out = out
	}
	return e, nil
}

func parseRefDump(raw any) (Ref, error) {
	switch rv := raw.(type) {
	case string:
		return IDRef(rv), nil
	case []any:
		out := make(TupRef, len(rv))
		for i, r := range rv {
			ref, err := parseRefDump(r)
			if err != nil {
				return nil, fmt.Errorf("[%d]: %w", i, err)
			}
			out[i] = ref
		}
		return out, nil
	case map[string]any:
		out := make(RecRef, len(rv))
		for k, r := range rv {
			ref, err := parseRefDump(r)
			if err != nil {
				return nil, fmt.Errorf("[%q]: %w", k, err)
			}
			out[k] = ref
		}
		return out, nil
	default:
		return nil, fmt.Errorf("unsupported ref form: %T", raw)
	}
}

func strField(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", fmt.Errorf("dump: missing %q", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("dump: %q is not a string", key)
	}
	return s, nil
}

func intField(m map[string]any, key string) (int, error) {
	switch v := m[key].(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case json.Number:
		// The store decodes snapshot bodies with UseNumber.
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("dump: %q is not an integer", key)
		}
		return int(n), nil
	case float64:
		// encoding/json decodes numbers as float64; whole values only.
		if v != float64(int(v)) {
			return 0, fmt.Errorf("dump: %q is not an integer", key)
		}
		return int(v), nil
	case nil:
		return 0, fmt.Errorf("dump: missing %q", key)
	default:
		return 0, fmt.Errorf("dump: %q is not an integer", key)
	}
}
