// Package corekind ships the built-in node-kind packs: numeric, string,
// and boolean literals and operators, the eq/add traits, structural
// geometry kinds, alias markers, and the fresh-scope wrapper.
//
// Each pack registers through the same registry.KindSet surface an
// externally authored pack would use; nothing in the elaborator or
// evaluator knows these kinds exist.
package corekind

import (
	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// Output-type tags of the built-in packs.
const (
	TypeNum   ir.Type = "num"
	TypeStr   ir.Type = "str"
	TypeBool  ir.Type = "bool"
	TypePoint ir.Type = "point"
	TypeBox   ir.Type = "box"
)

// All returns every built-in kind set, ready for registry.Compose.
func All() []registry.KindSet {
	return []registry.KindSet{
		NumSet(),
		StrSet(),
		BoolSet(),
		GeoSet(),
		ScopeSet(),
		CoreSet(),
	}
}

// Compose builds a registry and handler table from all built-in sets.
func Compose() (*registry.Registry, fold.Handlers, error) {
	return registry.Compose(All()...)
}

// CoreSet carries the unprefixed traits and the alias marker kind.
//
// Trait instances point into the other packs: the trait table is
// consulted at elaboration time, so a trait may name kinds its own set
// does not define.
func CoreSet() registry.KindSet {
	return registry.KindSet{
		Prefix: "core",
		Fixed: map[string]registry.FixedSpec{
			// Alias markers are synthesized by mutation, not
			// elaboration; the fixed spec exists so a reachable marker
			// can still be folded (it passes its target through).
			ir.KindAlias: {Args: registry.Args(TypeNum), Out: TypeNum},
		},
		Traits: map[string]registry.TraitSpec{
			"eq": {
				Out: TypeBool,
				Impls: map[ir.Type]string{
					TypeNum: "num/eq",
					TypeStr: "str/eq",
				},
			},
			"add": {
				Out: TypeNum,
				Impls: map[ir.Type]string{
					TypeNum: "num/add",
				},
			},
		},
		Handlers: fold.Handlers{
			ir.KindAlias: passthroughHandler,
		},
	}
}
