package registry

import (
	"slices"
	"strings"

	"github.com/roach88/arbor/internal/ir"
)

// Shape is a sealed descriptor of one argument position.
//
// Most kinds take flat arguments described by a TypeShape. Structural
// kinds take nested records or fixed-size tuples, possibly holding
// further construction nodes at arbitrary depth; those are described by
// RecShape and TupShape, which the elaborator mirrors into RecRef and
// TupRef structures.
type Shape interface {
	shape()
	String() string
}

// TypeShape expects a node (or liftable raw value) of one output type.
type TypeShape ir.Type

func (TypeShape) shape() {}

func (s TypeShape) String() string {
	return string(s)
}

// RecShape expects a record argument with exactly these fields.
// Field order is irrelevant.
type RecShape map[string]Shape

func (RecShape) shape() {}

func (s RecShape) String() string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	// Deterministic rendering for error messages.
	slices.Sort(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + s[k].String()
	}
	return "{" + strings.Join(parts, ", ") + "}"
}

// TupShape expects a tuple argument of exactly this arity.
// Position is load-bearing.
type TupShape []Shape

func (TupShape) shape() {}

func (s TupShape) String() string {
	parts := make([]string, len(s))
	for i, elem := range s {
		parts[i] = elem.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// Args is a convenience for building a FixedSpec argument list from
// plain types.
func Args(types ...ir.Type) []Shape {
	shapes := make([]Shape, len(types))
	for i, t := range types {
		shapes[i] = TypeShape(t)
	}
	return shapes
}
