package dirty

import (
	"fmt"

	"github.com/roach88/arbor/internal/ir"
)

// AddAlias attaches a named alias marker to target. The marker is an
// ordinary entry (kind ir.KindAlias) whose single child is the target
// and whose Out literal is the alias name; the predicate layer resolves
// names through these markers.
//
// Markers hang off the side of the graph: they reference the target but
// nothing references them, so a GC from the root prunes them. Keep
// aliases only on working copies that commit without an intervening GC,
// or re-add them after pruning.
func AddAlias(d Dirty, name string, target ir.NodeID) (Dirty, error) {
	if name == "" {
		return Dirty{}, fmt.Errorf("alias name must not be empty")
	}
	if _, ok := d.Entries[target]; !ok {
		return Dirty{}, fmt.Errorf("alias %q: target %s has no entry", name, target)
	}

	id, next := d.NewID()
	return next.AddEntry(id, ir.Entry{
		Kind:     ir.KindAlias,
		Children: []ir.Ref{ir.IDRef(target)},
		Out:      ir.Str(name),
	}), nil
}
