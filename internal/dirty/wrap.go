package dirty

import (
	"fmt"

	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// WrapAbove inserts a wrapper entry of wrapperKind above target.
//
// Ordering matters: existing parents are rewired to the wrapper id
// before the wrapper's own entry is inserted, so the wrapper's declared
// child is never mistaken for a rewire target and the wrapper can never
// end up referencing itself. If target was the root, the wrapper
// becomes the new root and the declared output type follows the
// wrapper kind.
func WrapAbove(d Dirty, target ir.NodeID, wrapperKind string, reg *registry.Registry) (Dirty, error) {
	if _, ok := d.Entries[target]; !ok {
		return Dirty{}, fmt.Errorf("wrap %s: target has no entry", target)
	}
	spec, ok := reg.Fixed(wrapperKind)
	if !ok {
		return Dirty{}, fmt.Errorf("wrap %s: kind %q is not in the registry", target, wrapperKind)
	}
	if len(spec.Args) != 1 {
		return Dirty{}, fmt.Errorf("wrap %s: kind %q takes %d arguments, wrappers take 1",
			target, wrapperKind, len(spec.Args))
	}

	wrapID, next := d.NewID()

	// Rewire first, against the pre-insert snapshot.
	next = next.RewireChildren(target, wrapID)
	next = next.AddEntry(wrapID, ir.Entry{
		Kind:     wrapperKind,
		Children: []ir.Ref{ir.IDRef(target)},
	})

	if d.Root == target {
		next = next.SetRoot(wrapID)
		next = next.SetOut(spec.Out)
	}
	return next, nil
}
