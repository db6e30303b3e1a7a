// Package elab normalizes permissive construction trees into validated
// IR: it walks the tree against the registry, lifts raw values into
// literal leaves, resolves traits to concrete kinds, validates argument
// and output types, and assigns node ids from a threaded counter.
//
// Elaboration is a pure function of (tree, registry). The id sequence is
// a deterministic, replayable trace of the walk: children are assigned
// ids before their parent, in argument order.
package elab

import (
	"fmt"
	"slices"

	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
	"github.com/roach88/arbor/internal/tree"
)

// DefaultMaxDepth bounds the recursive walk. Construction trees are
// plain data and can arrive from untrusted documents; the bound keeps an
// adversarial or accidentally cyclic input from exhausting the stack.
const DefaultMaxDepth = 1024

// Options tune one elaboration.
type Options struct {
	// MaxDepth overrides DefaultMaxDepth when positive.
	MaxDepth int
}

// Elaborate normalizes a construction tree into a validated IR.
func Elaborate(root *tree.Node, reg *registry.Registry) (ir.IR, error) {
	return ElaborateWith(root, reg, Options{})
}

// ElaborateWith is Elaborate with explicit options.
func ElaborateWith(root *tree.Node, reg *registry.Registry, opts Options) (ir.IR, error) {
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	e := &elaborator{
		reg:      reg,
		entries:  make(map[ir.NodeID]ir.Entry),
		counter:  ir.NewCounter(0),
		maxDepth: maxDepth,
	}

	rootID, out, err := e.node(root, 0)
	if err != nil {
		return ir.IR{}, err
	}

	return ir.IR{
		Root:    rootID,
		Entries: e.entries,
		Counter: e.counter,
		Out:     out,
	}, nil
}

// elaborator carries the walk's only state: the growing adjacency map
// and the id counter. Both are local to one ElaborateWith call, so
// elaboration has no side effects beyond its return value.
type elaborator struct {
	reg      *registry.Registry
	entries  map[ir.NodeID]ir.Entry
	counter  ir.Counter
	maxDepth int
}

func (e *elaborator) emit(entry ir.Entry) ir.NodeID {
	var id ir.NodeID
	id, e.counter = e.counter.Next()
	e.entries[id] = entry
	return id
}

// node elaborates one construction node and returns its id and output
// type. Children receive ids first, so ids replay the argument walk.
func (e *elaborator) node(n *tree.Node, depth int) (ir.NodeID, ir.Type, error) {
	if depth >= e.maxDepth {
		return "", "", &Error{Code: ErrCodeDepthExceeded, Kind: n.Kind, Pos: -1,
			Message: "construction tree exceeds maximum depth"}
	}

	if spec, ok := e.reg.Fixed(n.Kind); ok {
		return e.fixedNode(n, spec, depth)
	}
	if spec, ok := e.reg.Trait(n.Kind); ok {
		return e.traitNode(n, spec, depth)
	}
	return "", "", &Error{Code: ErrCodeUnknownKind, Kind: n.Kind, Pos: -1,
		Message: "kind is not in the registry"}
}

func (e *elaborator) fixedNode(n *tree.Node, spec registry.FixedSpec, depth int) (ir.NodeID, ir.Type, error) {
	if len(n.Args) != len(spec.Args) {
		return "", "", &Error{Code: ErrCodeArityMismatch, Kind: n.Kind, Pos: -1,
			Message: fmt.Sprintf("expects %d arguments, got %d", len(spec.Args), len(n.Args))}
	}

	children := make([]ir.Ref, len(n.Args))
	for i, arg := range n.Args {
		ref, err := e.arg(arg, spec.Args[i], n.Kind, i, depth)
		if err != nil {
			return "", "", err
		}
		children[i] = ref
	}

	id := e.emit(ir.Entry{Kind: n.Kind, Children: children})
	return id, spec.Out, nil
}

// traitNode resolves an abstract operation to a concrete kind from its
// operands' discovered type. The first operand elaborates with no type
// expectation; the second must discover the same type, checked
// explicitly before the trait's instance map is consulted.
func (e *elaborator) traitNode(n *tree.Node, spec registry.TraitSpec, depth int) (ir.NodeID, ir.Type, error) {
	if len(n.Args) != 2 {
		return "", "", &Error{Code: ErrCodeArityMismatch, Kind: n.Kind, Pos: -1,
			Message: fmt.Sprintf("trait expects 2 operands, got %d", len(n.Args))}
	}

	leftID, leftType, err := e.operand(n.Args[0], n.Kind, 0, depth)
	if err != nil {
		return "", "", err
	}
	rightID, rightType, err := e.operand(n.Args[1], n.Kind, 1, depth)
	if err != nil {
		return "", "", err
	}

	if leftType != rightType {
		return "", "", &Error{Code: ErrCodeTraitOperandMismatch, Kind: n.Kind, Pos: 1,
			Want: leftType, Got: rightType,
			Message: "trait operands have differing types"}
	}

	concrete, ok := spec.Impls[leftType]
	if !ok {
		return "", "", &Error{Code: ErrCodeNoTraitInstance, Kind: n.Kind, Pos: -1,
			Got:     leftType,
			Message: fmt.Sprintf("trait has no instance for type %s", leftType)}
	}

	id := e.emit(ir.Entry{Kind: concrete, Children: []ir.Ref{ir.IDRef(leftID), ir.IDRef(rightID)}})
	return id, spec.Out, nil
}

// operand elaborates a trait operand with no type expectation: nodes
// report their own output type, raw values discover theirs through the
// lift table. Structural arguments can never be trait operands.
func (e *elaborator) operand(arg any, trait string, pos, depth int) (ir.NodeID, ir.Type, error) {
	switch v := arg.(type) {
	case *tree.Node:
		return e.node(v, depth+1)
	case tree.Rec, tree.Tup:
		return "", "", &Error{Code: ErrCodeBadArgument, Kind: trait, Pos: pos,
			Message: "trait operands must be nodes or raw values, not structures"}
	default:
		return e.lift(v, trait, pos)
	}
}

// arg elaborates one argument position against its expected shape and
// returns the child reference to store on the parent entry.
func (e *elaborator) arg(arg any, shape registry.Shape, kind string, pos, depth int) (ir.Ref, error) {
	switch s := shape.(type) {
	case registry.TypeShape:
		id, err := e.typedArg(arg, ir.Type(s), kind, pos, depth)
		if err != nil {
			return nil, err
		}
		return ir.IDRef(id), nil
	case registry.RecShape:
		return e.recArg(arg, s, kind, pos, depth)
	case registry.TupShape:
		return e.tupArg(arg, s, kind, pos, depth)
	default:
		return nil, &Error{Code: ErrCodeBadArgument, Kind: kind, Pos: pos,
			Message: fmt.Sprintf("unknown shape %T in registry spec", shape)}
	}
}

// typedArg elaborates an argument expected to produce one exact type.
// No coercion: a mismatch is a hard failure naming kind, position, and
// both types.
func (e *elaborator) typedArg(arg any, want ir.Type, kind string, pos, depth int) (ir.NodeID, error) {
	switch v := arg.(type) {
	case *tree.Node:
		id, got, err := e.node(v, depth+1)
		if err != nil {
			return "", err
		}
		if got != want {
			return "", &Error{Code: ErrCodeTypeMismatch, Kind: kind, Pos: pos,
				Want: want, Got: got,
				Message: fmt.Sprintf("argument %s produces the wrong type", v.Kind)}
		}
		return id, nil

	case tree.Rec, tree.Tup:
		return "", &Error{Code: ErrCodeShapeMismatch, Kind: kind, Pos: pos,
			Want:    want,
			Message: "expected a flat argument, got a structure"}

	default:
		id, got, err := e.lift(v, kind, pos)
		if err != nil {
			return "", err
		}
		if got != want {
			return "", &Error{Code: ErrCodeTypeMismatch, Kind: kind, Pos: pos,
				Want: want, Got: got,
				Message: "raw value's lift type disagrees with the expected type"}
		}
		return id, nil
	}
}

// lift synthesizes a literal leaf entry for a raw value.
func (e *elaborator) lift(v any, kind string, pos int) (ir.NodeID, ir.Type, error) {
	tag, ok := registry.TagOf(v)
	if !ok {
		return "", "", &Error{Code: ErrCodeNoLift, Kind: kind, Pos: pos,
			Message: fmt.Sprintf("raw value of type %T has no lift rule", v)}
	}
	rule, ok := e.reg.Lift(tag)
	if !ok {
		return "", "", &Error{Code: ErrCodeNoLift, Kind: kind, Pos: pos,
			Message: fmt.Sprintf("no lift rule for tag %s", tag)}
	}

	out, err := ir.FromGo(v)
	if err != nil {
		return "", "", &Error{Code: ErrCodeNoLift, Kind: kind, Pos: pos,
			Message: err.Error()}
	}

	id := e.emit(ir.Entry{Kind: rule.Kind, Out: out})
	return id, rule.Out, nil
}

// recArg mirrors a record-shaped argument into a RecRef. Field order is
// irrelevant; the field set must match the shape exactly.
func (e *elaborator) recArg(arg any, shape registry.RecShape, kind string, pos, depth int) (ir.Ref, error) {
	rec, ok := arg.(tree.Rec)
	if !ok {
		return nil, &Error{Code: ErrCodeShapeMismatch, Kind: kind, Pos: pos,
			Message: fmt.Sprintf("expected record %s, got %T", shape, arg)}
	}

	for field := range rec {
		if _, expected := shape[field]; !expected {
			return nil, &Error{Code: ErrCodeShapeMismatch, Kind: kind, Pos: pos,
				Message: fmt.Sprintf("unexpected record field %q", field)}
		}
	}

	// Fields elaborate in sorted name order so child ids stay
	// deterministic regardless of map iteration.
	fields := make([]string, 0, len(shape))
	for field := range shape {
		fields = append(fields, field)
	}
	slices.Sort(fields)

	out := make(ir.RecRef, len(shape))
	for _, field := range fields {
		fieldArg, present := rec[field]
		if !present {
			return nil, &Error{Code: ErrCodeShapeMismatch, Kind: kind, Pos: pos,
				Message: fmt.Sprintf("missing record field %q", field)}
		}
		ref, err := e.arg(fieldArg, shape[field], kind, pos, depth+1)
		if err != nil {
			return nil, err
		}
		out[field] = ref
	}
	return out, nil
}

// tupArg mirrors a tuple-shaped argument into a TupRef. Position is
// load-bearing and arity must match exactly.
func (e *elaborator) tupArg(arg any, shape registry.TupShape, kind string, pos, depth int) (ir.Ref, error) {
	tup, ok := arg.(tree.Tup)
	if !ok {
		return nil, &Error{Code: ErrCodeShapeMismatch, Kind: kind, Pos: pos,
			Message: fmt.Sprintf("expected tuple %s, got %T", shape, arg)}
	}
	if len(tup) != len(shape) {
		return nil, &Error{Code: ErrCodeShapeMismatch, Kind: kind, Pos: pos,
			Message: fmt.Sprintf("expected tuple of %d, got %d", len(shape), len(tup))}
	}

	out := make(ir.TupRef, len(shape))
	for i, elemShape := range shape {
		ref, err := e.arg(tup[i], elemShape, kind, pos, depth+1)
		if err != nil {
			return nil, err
		}
		out[i] = ref
	}
	return out, nil
}

