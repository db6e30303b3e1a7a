package pred

import (
	"fmt"

	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// SelectWhere enumerates the ids of entries matching the predicate, in
// a single linear pass. The result is a set; its order carries no
// meaning.
func SelectWhere(x ir.IR, p Predicate) map[ir.NodeID]bool {
	matches := make(map[ir.NodeID]bool)
	for id, e := range x.Entries {
		if p(e, id, x.Entries) {
			matches[id] = true
		}
	}
	return matches
}

// MapWhere rewrites matching entries through transform and returns a new
// IR. Entries not matching the predicate are carried over by identity.
//
// Rewriting the root is allowed and changes the IR's declared output
// type to the new root entry's output type - an intentional type-level
// effect, not an error. The registry supplies the new kind's output
// type; rewriting the root to a kind the registry does not know fails.
func MapWhere(x ir.IR, p Predicate, transform func(ir.Entry) ir.Entry, reg *registry.Registry) (ir.IR, error) {
	entries := make(map[ir.NodeID]ir.Entry, len(x.Entries))
	out := x.Out

	for id, e := range x.Entries {
		if !p(e, id, x.Entries) {
			entries[id] = e
			continue
		}
		replaced := transform(e)
		entries[id] = replaced

		if id == x.Root && replaced.Kind != e.Kind {
			rootType, err := outTypeOf(reg, replaced.Kind)
			if err != nil {
				return ir.IR{}, fmt.Errorf("map root %s: %w", id, err)
			}
			out = rootType
		}
	}

	return ir.IR{Root: x.Root, Entries: entries, Counter: x.Counter, Out: out}, nil
}

// ReplaceWhere swaps the kind tag of matching entries, keeping children
// and stored value. Convenience over MapWhere.
func ReplaceWhere(x ir.IR, p Predicate, newKind string, reg *registry.Registry) (ir.IR, error) {
	return MapWhere(x, p, func(e ir.Entry) ir.Entry {
		return ir.Entry{Kind: newKind, Children: e.Children, Out: e.Out}
	}, reg)
}

func outTypeOf(reg *registry.Registry, kind string) (ir.Type, error) {
	if spec, ok := reg.Fixed(kind); ok {
		return spec.Out, nil
	}
	if spec, ok := reg.Trait(kind); ok {
		return spec.Out, nil
	}
	return "", fmt.Errorf("kind %q is not in the registry", kind)
}
