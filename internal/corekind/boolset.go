package corekind

import (
	"context"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// BoolSet is the boolean pack. Raw Go bools lift to bool/lit leaves.
func BoolSet() registry.KindSet {
	return registry.KindSet{
		Prefix: "bool",
		Fixed: map[string]registry.FixedSpec{
			"bool/lit": {Out: TypeBool},
			"bool/and": {Args: registry.Args(TypeBool, TypeBool), Out: TypeBool},
			"bool/or":  {Args: registry.Args(TypeBool, TypeBool), Out: TypeBool},
			"bool/not": {Args: registry.Args(TypeBool), Out: TypeBool},
		},
		Lifts: map[registry.Tag]registry.LiftRule{
			registry.TagBool: {Kind: "bool/lit", Out: TypeBool},
		},
		Handlers: fold.Handlers{
			"bool/lit": litHandler,
			"bool/and": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				a, err := boolArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				if !a {
					// Short-circuit: the right operand is never requested.
					return ir.Bool(false), nil
				}
				b, err := boolArg(ctx, call, 1)
				if err != nil {
					return nil, err
				}
				return ir.Bool(b), nil
			},
			"bool/or": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				a, err := boolArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				if a {
					return ir.Bool(true), nil
				}
				b, err := boolArg(ctx, call, 1)
				if err != nil {
					return nil, err
				}
				return ir.Bool(b), nil
			},
			"bool/not": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				a, err := boolArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				return ir.Bool(!a), nil
			},
		},
	}
}
