// Package registry holds the static tables the elaborator resolves
// against: per-kind argument and output types, trait dispatch tables,
// and raw-value lift rules.
//
// A Registry is composed once from independently authored kind sets and
// is immutable afterwards. Composition is where kind collisions are
// caught - never elaboration or evaluation.
package registry

import (
	"strings"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
)

// FixedSpec describes a kind with a fixed signature: an ordered list of
// expected argument shapes and one output type.
type FixedSpec struct {
	Args []Shape
	Out  ir.Type
}

// TraitSpec describes an abstract binary operation resolved to a
// concrete kind from its operands' discovered type. Both operands must
// elaborate to the same type before Impls is consulted.
type TraitSpec struct {
	Out   ir.Type
	Impls map[ir.Type]string // operand type -> concrete kind
}

// LiftRule synthesizes a literal leaf entry from a raw value.
type LiftRule struct {
	Kind string
	Out  ir.Type
}

// Registry is the composed lookup table. Immutable after Compose.
type Registry struct {
	fixed  map[string]FixedSpec
	traits map[string]TraitSpec
	lifts  map[Tag]LiftRule
}

// Fixed looks up a fixed-signature kind.
func (r *Registry) Fixed(kind string) (FixedSpec, bool) {
	spec, ok := r.fixed[kind]
	return spec, ok
}

// Trait looks up a trait by its abstract operation name.
func (r *Registry) Trait(name string) (TraitSpec, bool) {
	spec, ok := r.traits[name]
	return spec, ok
}

// Lift looks up the lift rule for a raw value's type tag.
func (r *Registry) Lift(tag Tag) (LiftRule, bool) {
	rule, ok := r.lifts[tag]
	return rule, ok
}

// Known reports whether kind resolves to a fixed spec or a trait.
func (r *Registry) Known(kind string) bool {
	if _, ok := r.fixed[kind]; ok {
		return true
	}
	_, ok := r.traits[kind]
	return ok
}

// Kinds returns all fixed kind names, unsorted.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.fixed))
	for k := range r.fixed {
		kinds = append(kinds, k)
	}
	return kinds
}

// KindSet is the contribution contract for a node-kind pack: a unique
// namespace prefix, the pack's specs and lift rules, and a handler per
// kind conforming to the evaluator's protocol.
type KindSet struct {
	// Prefix is the pack's kind-name namespace ("num", "str", ...).
	// Every fixed kind in the set must be named "<Prefix>/...".
	Prefix string

	Fixed    map[string]FixedSpec
	Traits   map[string]TraitSpec
	Lifts    map[Tag]LiftRule
	Handlers fold.Handlers
}

// Compose builds a Registry and a merged handler table from kind sets.
//
// Overlapping kind names, trait names, lift tags, or handler kinds
// across sets are configuration errors raised here, at composition time.
func Compose(sets ...KindSet) (*Registry, fold.Handlers, error) {
	r := &Registry{
		fixed:  make(map[string]FixedSpec),
		traits: make(map[string]TraitSpec),
		lifts:  make(map[Tag]LiftRule),
	}
	handlers := make(fold.Handlers)

	for _, set := range sets {
		if set.Prefix == "" {
			return nil, nil, &ComposeError{Code: ErrCodeBadPrefix,
				Message: "kind set has an empty namespace prefix"}
		}

		for kind, spec := range set.Fixed {
			if !strings.HasPrefix(kind, set.Prefix+"/") {
				return nil, nil, &ComposeError{Code: ErrCodeBadPrefix, Kind: kind,
					Message: "kind is outside the set's namespace " + set.Prefix}
			}
			if _, dup := r.fixed[kind]; dup {
				return nil, nil, &ComposeError{Code: ErrCodeKindCollision, Kind: kind,
					Message: "kind defined by more than one set"}
			}
			if _, dup := r.traits[kind]; dup {
				return nil, nil, &ComposeError{Code: ErrCodeKindCollision, Kind: kind,
					Message: "kind collides with a trait name"}
			}
			r.fixed[kind] = spec
		}

		for name, spec := range set.Traits {
			if _, dup := r.traits[name]; dup {
				return nil, nil, &ComposeError{Code: ErrCodeKindCollision, Kind: name,
					Message: "trait defined by more than one set"}
			}
			if _, dup := r.fixed[name]; dup {
				return nil, nil, &ComposeError{Code: ErrCodeKindCollision, Kind: name,
					Message: "trait collides with a fixed kind"}
			}
			r.traits[name] = spec
		}

		for tag, rule := range set.Lifts {
			if _, dup := r.lifts[tag]; dup {
				return nil, nil, &ComposeError{Code: ErrCodeLiftCollision, Tag: tag,
					Message: "lift rule defined by more than one set"}
			}
			r.lifts[tag] = rule
		}

		for kind, h := range set.Handlers {
			if _, dup := handlers[kind]; dup {
				return nil, nil, &ComposeError{Code: ErrCodeKindCollision, Kind: kind,
					Message: "handler defined by more than one set"}
			}
			handlers[kind] = h
		}
	}

	return r, handlers, nil
}
