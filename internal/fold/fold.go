// Package fold executes a validated IR against per-kind handlers.
//
// The fold is DAG-memoized: within one Fold call every node id is
// evaluated at most once, so an entry reachable from two parents runs
// its handler exactly once and both parents observe the same value.
// Node identity, not structural equality, is the memoization key.
package fold

import (
	"context"
	"fmt"

	"github.com/roach88/arbor/internal/ir"
)

// Handler is the suspending computation for one node kind.
//
// A handler receives a Call and may request the evaluated value of any
// child (by index into its own children list) any number of times, in
// any order; repeated requests never trigger duplicate evaluation. The
// handler's return value becomes the node's cached result.
//
// External effects (network calls delegated to pack-supplied clients)
// are the handler's own business; the evaluator only sequences child
// resolution. A handler that fails propagates its failure synchronously
// to the Fold caller, abandoning sibling evaluations not yet started.
type Handler func(ctx context.Context, call *Call) (ir.Value, error)

// Handlers maps kind names to their handlers. Dispatch is a closed-world
// lookup: an entry whose kind has no handler is a fatal evaluation error.
type Handlers map[string]Handler

// Merge combines handler tables, failing on duplicate kinds.
func Merge(tables ...Handlers) (Handlers, error) {
	out := make(Handlers)
	for _, table := range tables {
		for kind, h := range table {
			if _, dup := out[kind]; dup {
				return nil, fmt.Errorf("duplicate handler for kind %q", kind)
			}
			out[kind] = h
		}
	}
	return out, nil
}

// Fold evaluates a validated IR from its root and returns the root
// handler's value.
func Fold(ctx context.Context, x ir.IR, handlers Handlers) (ir.Value, error) {
	f := &folder{
		entries:  x.Entries,
		handlers: handlers,
		memo:     make(map[ir.NodeID]ir.Value),
		active:   make(map[ir.NodeID]bool),
	}
	return f.eval(ctx, x.Root)
}

// folder is one memo scope. A nested transactional kind that asks for a
// fresh scope gets a new folder over the same entries and handlers.
type folder struct {
	entries  map[ir.NodeID]ir.Entry
	handlers Handlers
	memo     map[ir.NodeID]ir.Value
	active   map[ir.NodeID]bool
}

func (f *folder) eval(ctx context.Context, id ir.NodeID) (ir.Value, error) {
	if v, hit := f.memo[id]; hit {
		return v, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entry, exists := f.entries[id]
	if !exists {
		return nil, &EvalError{Code: ErrCodeMissingEntry, ID: id,
			Message: "no entry for id"}
	}
	handler, known := f.handlers[entry.Kind]
	if !known {
		return nil, &EvalError{Code: ErrCodeUnknownKind, ID: id, Kind: entry.Kind,
			Message: "no handler registered"}
	}

	// Commit validates references, not acyclicity; refuse to recurse
	// into a node already on the evaluation path.
	if f.active[id] {
		return nil, &EvalError{Code: ErrCodeCycle, ID: id, Kind: entry.Kind,
			Message: "entry participates in a reference cycle"}
	}
	f.active[id] = true
	defer delete(f.active, id)

	v, err := handler(ctx, &Call{folder: f, id: id, entry: entry})
	if err != nil {
		return nil, wrapHandlerErr(id, entry.Kind, err)
	}

	f.memo[id] = v
	return v, nil
}

func wrapHandlerErr(id ir.NodeID, kind string, err error) error {
	// Keep structured evaluation errors intact as they bubble up the
	// handler chain; only wrap the failure's outermost frame.
	var ee *EvalError
	if asEvalError(err, &ee) {
		return err
	}
	return &EvalError{Code: ErrCodeHandlerFailed, ID: id, Kind: kind,
		Message: "handler failed", Err: err}
}

// Call is a handler's window onto the evaluator: the entry under
// evaluation plus resolvers for its children.
type Call struct {
	folder *folder
	id     ir.NodeID
	entry  ir.Entry
}

// ID returns the id of the entry under evaluation.
func (c *Call) ID() ir.NodeID {
	return c.id
}

// Entry returns the entry under evaluation.
func (c *Call) Entry() ir.Entry {
	return c.entry
}

// Out returns the entry's stored literal, or nil when unset.
func (c *Call) Out() ir.Value {
	return c.entry.Out
}

// Arg resolves the i-th child to its evaluated value, consulting the
// memo scope first. The child must be a plain id reference; structural
// mirrors resolve through Resolve.
func (c *Call) Arg(ctx context.Context, i int) (ir.Value, error) {
	ref, err := c.childRef(i)
	if err != nil {
		return nil, err
	}
	idRef, ok := ref.(ir.IDRef)
	if !ok {
		return nil, &EvalError{Code: ErrCodeBadChild, ID: c.id, Kind: c.entry.Kind,
			Message: fmt.Sprintf("child %d is a structural mirror, not an id", i)}
	}
	return c.folder.eval(ctx, ir.NodeID(idRef))
}

// ArgFresh resolves the i-th child under a fresh memo scope, so a
// retried transactional block re-executes everything inside it. Values
// memoized in the parent scope are not visible to the fresh scope.
//
// The active set is shared, not fresh: it tracks the evaluation path,
// and a reference back into an ancestor is a cycle no matter how many
// scope boundaries it crosses.
func (c *Call) ArgFresh(ctx context.Context, i int) (ir.Value, error) {
	ref, err := c.childRef(i)
	if err != nil {
		return nil, err
	}
	idRef, ok := ref.(ir.IDRef)
	if !ok {
		return nil, &EvalError{Code: ErrCodeBadChild, ID: c.id, Kind: c.entry.Kind,
			Message: fmt.Sprintf("child %d is a structural mirror, not an id", i)}
	}
	fresh := &folder{
		entries:  c.folder.entries,
		handlers: c.folder.handlers,
		memo:     make(map[ir.NodeID]ir.Value),
		active:   c.folder.active,
	}
	return fresh.eval(ctx, ir.NodeID(idRef))
}

// Resolve evaluates an arbitrary child reference. Id references resolve
// to the child's value; record and tuple mirrors resolve recursively to
// Rec and List values in the same shape.
func (c *Call) Resolve(ctx context.Context, ref ir.Ref) (ir.Value, error) {
	switch rv := ref.(type) {
	case ir.IDRef:
		return c.folder.eval(ctx, ir.NodeID(rv))
	case ir.TupRef:
		out := make(ir.List, len(rv))
		for i, r := range rv {
			v, err := c.Resolve(ctx, r)
			if err != nil {
				return nil, err
			}
			out[i] = v
		}
		return out, nil
	case ir.RecRef:
		out := make(ir.Rec, len(rv))
		for k, r := range rv {
			v, err := c.Resolve(ctx, r)
			if err != nil {
				return nil, err
			}
			out[k] = v
		}
		return out, nil
	default:
		return nil, &EvalError{Code: ErrCodeBadChild, ID: c.id, Kind: c.entry.Kind,
			Message: fmt.Sprintf("unknown reference type %T", ref)}
	}
}

func (c *Call) childRef(i int) (ir.Ref, error) {
	if i < 0 || i >= len(c.entry.Children) {
		return nil, &EvalError{Code: ErrCodeBadChild, ID: c.id, Kind: c.entry.Kind,
			Message: fmt.Sprintf("child index %d out of range (have %d)", i, len(c.entry.Children))}
	}
	return c.entry.Children[i], nil
}
