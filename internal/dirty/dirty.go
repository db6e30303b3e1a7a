// Package dirty is the mutation transaction over IR: a working copy
// that temporarily waives the resolvable-children invariant, a set of
// pure structural edits, a reachability garbage collector, and the
// validating commit back to IR.
//
// Lifecycle: IR -> From -> edits (any order, any number) -> GC
// (optional) -> Commit -> IR. Every operation returns a new value;
// nothing here mutates its receiver or arguments.
package dirty

import (
	"github.com/roach88/arbor/internal/ir"
)

// Dirty is a mutable-by-convention snapshot of an IR. Its entry map may
// reference ids that do not resolve; only Commit re-checks that.
type Dirty struct {
	Root    ir.NodeID
	Entries map[ir.NodeID]ir.Entry
	Counter ir.Counter
	Out     ir.Type
}

// From copies a valid IR into a working copy.
func From(x ir.IR) Dirty {
	return Dirty{
		Root:    x.Root,
		Entries: x.CloneEntries(),
		Counter: x.Counter,
		Out:     x.Out,
	}
}

// NewID allocates a fresh id from the working copy's counter and
// returns it with the advanced copy.
func (d Dirty) NewID() (ir.NodeID, Dirty) {
	id, counter := d.Counter.Next()
	next := d
	next.Counter = counter
	return id, next
}

// AddEntry inserts an entry under an explicit id. The id should come
// from NewID so the shared counter stays monotonic.
func (d Dirty) AddEntry(id ir.NodeID, entry ir.Entry) Dirty {
	next := d.cloneEntries()
	next.Entries[id] = entry
	return next
}

// RemoveEntry deletes an entry. References to the removed id are left
// dangling on purpose; Commit reports them, GC tolerates them.
func (d Dirty) RemoveEntry(id ir.NodeID) Dirty {
	next := d.cloneEntries()
	delete(next.Entries, id)
	return next
}

// SwapEntry replaces an entry in place, preserving its id and therefore
// its position in every parent's child list.
func (d Dirty) SwapEntry(id ir.NodeID, entry ir.Entry) Dirty {
	next := d.cloneEntries()
	next.Entries[id] = entry
	return next
}

// RewireChildren replaces every reference to oldID with newID across
// every entry's children. The walk reads the pre-edit snapshot, so an
// entry added afterwards that references oldID (a wrapper's own child,
// say) is never accidentally rewritten to reference itself.
func (d Dirty) RewireChildren(oldID, newID ir.NodeID) Dirty {
	next := d
	next.Entries = make(map[ir.NodeID]ir.Entry, len(d.Entries))
	for id, e := range d.Entries {
		children := make([]ir.Ref, len(e.Children))
		for i, ref := range e.Children {
			children[i] = ir.RewriteRef(ref, oldID, newID)
		}
		next.Entries[id] = ir.Entry{Kind: e.Kind, Children: children, Out: e.Out}
	}
	return next
}

// SetRoot re-roots the working copy. The new root need not exist yet;
// Commit checks it.
func (d Dirty) SetRoot(id ir.NodeID) Dirty {
	next := d.cloneEntries()
	next.Root = id
	return next
}

// SetOut records the output type the committed IR should declare.
// Needed when an edit changed the root entry's kind.
func (d Dirty) SetOut(out ir.Type) Dirty {
	next := d.cloneEntries()
	next.Out = out
	return next
}

func (d Dirty) cloneEntries() Dirty {
	next := d
	next.Entries = make(map[ir.NodeID]ir.Entry, len(d.Entries))
	for id, e := range d.Entries {
		next.Entries[id] = e
	}
	return next
}

// Commit validates the working copy and converts it back to IR.
//
// Checks run over the whole entry map, not just the reachable subset:
// the root id must resolve, and every child id referenced by every
// entry must resolve. Callers wanting to ignore orphaned garbage run
// GC before Commit. Failures are fatal; no partial IR is returned.
func Commit(d Dirty) (ir.IR, error) {
	if _, ok := d.Entries[d.Root]; !ok {
		return ir.IR{}, &CommitError{Code: ErrCodeMissingRoot, Missing: d.Root,
			Message: "root id has no entry"}
	}

	// Deterministic error selection: scan entries in id order.
	ids := make([]ir.NodeID, 0, len(d.Entries))
	for id := range d.Entries {
		ids = append(ids, id)
	}
	ir.SortIDs(ids)

	for _, id := range ids {
		for _, child := range d.Entries[id].ChildIDs() {
			if _, ok := d.Entries[child]; !ok {
				return ir.IR{}, &CommitError{Code: ErrCodeMissingChild,
					From: id, Missing: child,
					Message: "child id has no entry"}
			}
		}
	}

	return ir.IR{
		Root:    d.Root,
		Entries: d.Entries,
		Counter: d.Counter,
		Out:     d.Out,
	}, nil
}
