// Package pred is the predicate and selection layer: boolean node
// matchers over IR entries, combinators over them, and the select,
// map, and replace operations built on top.
//
// Predicates are side-effect free and structurally compose. And/Or
// evaluate the left operand first and short-circuit.
package pred

import (
	"strings"

	"github.com/roach88/arbor/internal/ir"
)

// Predicate tests one entry against the whole adjacency map. The map is
// provided so predicates like alias resolution can consult entries
// other than the one under test.
type Predicate func(e ir.Entry, id ir.NodeID, entries map[ir.NodeID]ir.Entry) bool

// Kind matches entries with exactly this kind tag.
func Kind(kind string) Predicate {
	return func(e ir.Entry, _ ir.NodeID, _ map[ir.NodeID]ir.Entry) bool {
		return e.Kind == kind
	}
}

// KindPrefix matches entries whose kind starts with the prefix.
// Useful for selecting a whole pack namespace ("num/").
func KindPrefix(prefix string) Predicate {
	return func(e ir.Entry, _ ir.NodeID, _ map[ir.NodeID]ir.Entry) bool {
		return strings.HasPrefix(e.Kind, prefix)
	}
}

// Leaf matches entries with no children.
func Leaf() Predicate {
	return func(e ir.Entry, _ ir.NodeID, _ map[ir.NodeID]ir.Entry) bool {
		return e.IsLeaf()
	}
}

// ChildCount matches entries with exactly n child references.
func ChildCount(n int) Predicate {
	return func(e ir.Entry, _ ir.NodeID, _ map[ir.NodeID]ir.Entry) bool {
		return len(e.Children) == n
	}
}

// Alias matches the entry that a named alias marker points at. Alias
// markers are entries of kind ir.KindAlias whose single child is the id
// they name and whose Out literal is the alias name.
func Alias(name string) Predicate {
	return func(_ ir.Entry, id ir.NodeID, entries map[ir.NodeID]ir.Entry) bool {
		for _, candidate := range entries {
			if candidate.Kind != ir.KindAlias {
				continue
			}
			out, ok := candidate.Out.(ir.Str)
			if !ok || string(out) != name {
				continue
			}
			ids := candidate.ChildIDs()
			if len(ids) == 1 && ids[0] == id {
				return true
			}
		}
		return false
	}
}

// Not negates a predicate.
func Not(p Predicate) Predicate {
	return func(e ir.Entry, id ir.NodeID, entries map[ir.NodeID]ir.Entry) bool {
		return !p(e, id, entries)
	}
}

// And matches when every predicate matches, left to right,
// short-circuiting on the first miss.
func And(ps ...Predicate) Predicate {
	return func(e ir.Entry, id ir.NodeID, entries map[ir.NodeID]ir.Entry) bool {
		for _, p := range ps {
			if !p(e, id, entries) {
				return false
			}
		}
		return true
	}
}

// Or matches when any predicate matches, left to right, short-circuiting
// on the first hit.
func Or(ps ...Predicate) Predicate {
	return func(e ir.Entry, id ir.NodeID, entries map[ir.NodeID]ir.Entry) bool {
		for _, p := range ps {
			if p(e, id, entries) {
				return true
			}
		}
		return false
	}
}
