package dirty

import "github.com/roach88/arbor/internal/ir"

// Reachable computes the set of ids reachable from root by following
// child references.
//
// The traversal is an explicit worklist with a visited set: shared
// sub-nodes reachable through multiple parents are visited exactly
// once, repeated ids in a single child list cannot loop it, and a child
// id with no corresponding entry is reachable-but-terminal, not an
// error - dangling detection is Commit's job, not GC's.
func Reachable(entries map[ir.NodeID]ir.Entry, root ir.NodeID) map[ir.NodeID]bool {
	visited := make(map[ir.NodeID]bool)
	work := []ir.NodeID{root}

	for len(work) > 0 {
		id := work[len(work)-1]
		work = work[:len(work)-1]
		if visited[id] {
			continue
		}
		visited[id] = true

		entry, ok := entries[id]
		if !ok {
			continue // dangling reference, nothing to expand
		}
		work = append(work, entry.ChildIDs()...)
	}

	return visited
}

// LiveEntries filters the entry map to the subset reachable from root.
// Idempotent: pruning an already-pruned map is a no-op.
func LiveEntries(entries map[ir.NodeID]ir.Entry, root ir.NodeID) map[ir.NodeID]ir.Entry {
	reachable := Reachable(entries, root)
	live := make(map[ir.NodeID]ir.Entry, len(reachable))
	for id, e := range entries {
		if reachable[id] {
			live[id] = e
		}
	}
	return live
}

// GC prunes entries unreachable from the working copy's root.
func GC(d Dirty) Dirty {
	next := d
	next.Entries = LiveEntries(d.Entries, d.Root)
	return next
}
