package ir

// Type is the output-type tag of a kind ("num", "str", "bool", ...).
// The vocabulary is open: each kind set brings its own tags, and the
// elaborator only ever compares them for exact equality.
type Type string

// KindAlias is the marker kind for named aliases. An alias entry's
// single child is the id it names and its Out literal is the alias
// name. The predicate layer resolves aliases through these markers.
const KindAlias = "core/alias"

// Ref is a sealed reference from an entry to its children.
//
// Flat kinds reference children as a plain sequence of IDRefs. Structural
// kinds mirror their argument shape instead: a RecRef for record-shaped
// arguments (field order irrelevant) and a TupRef for tuple-shaped
// arguments (position load-bearing), nesting to arbitrary depth with
// IDRefs at the leaves.
type Ref interface {
	ref()
}

// IDRef references a single entry by id.
type IDRef NodeID

func (IDRef) ref() {}

// RecRef is a named mirror of a record-shaped argument.
type RecRef map[string]Ref

func (RecRef) ref() {}

// TupRef is a positional mirror of a tuple-shaped argument.
type TupRef []Ref

func (TupRef) ref() {}

// Entry is one node of the adjacency map.
// Immutable once elaborated; edits go through a dirty working copy.
type Entry struct {
	Kind     string
	Children []Ref
	Out      Value // literal payload, nil when unset
}

// IsLeaf reports whether the entry has no children.
func (e Entry) IsLeaf() bool {
	return len(e.Children) == 0
}

// ChildIDs returns every id referenced by the entry, in reference order,
// flattening nested record/tuple mirrors. Record fields are visited in
// sorted key order so the result is deterministic.
func (e Entry) ChildIDs() []NodeID {
	var ids []NodeID
	for _, ref := range e.Children {
		ids = appendRefIDs(ids, ref)
	}
	return ids
}

func appendRefIDs(ids []NodeID, ref Ref) []NodeID {
	// Explicit worklist; structural mirrors can nest arbitrarily deep.
	work := []Ref{ref}
	for len(work) > 0 {
		r := work[len(work)-1]
		work = work[:len(work)-1]
		switch rv := r.(type) {
		case IDRef:
			ids = append(ids, NodeID(rv))
		case TupRef:
			for i := len(rv) - 1; i >= 0; i-- {
				work = append(work, rv[i])
			}
		case RecRef:
			keys := make([]string, 0, len(rv))
			for k := range rv {
				keys = append(keys, k)
			}
			sortStrings(keys)
			for i := len(keys) - 1; i >= 0; i-- {
				work = append(work, rv[keys[i]])
			}
		}
	}
	return ids
}

// IR is a validated flat representation of one expression tree.
//
// Invariants of a valid IR:
//  1. Root resolves to an entry in Entries.
//  2. Every id referenced as a child resolves to an entry.
//  3. Ids are unique and were assigned by a single monotonic counter,
//     carried forward in Counter.
//
// Values of this type never mutate in place. Transformations rebuild the
// entry map, sharing untouched entries by identity.
type IR struct {
	Root    NodeID
	Entries map[NodeID]Entry
	Counter Counter
	Out     Type // output type of the root entry
}

// RootEntry returns the entry designated as root.
func (x IR) RootEntry() Entry {
	return x.Entries[x.Root]
}

// IDs returns all entry ids in creation order.
func (x IR) IDs() []NodeID {
	ids := make([]NodeID, 0, len(x.Entries))
	for id := range x.Entries {
		ids = append(ids, id)
	}
	SortIDs(ids)
	return ids
}

// CloneEntries shallow-copies the entry map. Entries themselves are
// treated as immutable and shared.
func (x IR) CloneEntries() map[NodeID]Entry {
	out := make(map[NodeID]Entry, len(x.Entries))
	for id, e := range x.Entries {
		out[id] = e
	}
	return out
}

// RewriteRef returns ref with every occurrence of oldID replaced by newID.
// Untouched refs are returned as-is.
func RewriteRef(ref Ref, oldID, newID NodeID) Ref {
	switch rv := ref.(type) {
	case IDRef:
		if NodeID(rv) == oldID {
			return IDRef(newID)
		}
		return rv
	case TupRef:
		out := make(TupRef, len(rv))
		for i, r := range rv {
			out[i] = RewriteRef(r, oldID, newID)
		}
		return out
	case RecRef:
		out := make(RecRef, len(rv))
		for k, r := range rv {
			out[k] = RewriteRef(r, oldID, newID)
		}
		return out
	default:
		return ref
	}
}
