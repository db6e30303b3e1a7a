package corekind

import (
	"context"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// StrSet is the string pack. Raw Go strings lift to str/lit leaves.
func StrSet() registry.KindSet {
	return registry.KindSet{
		Prefix: "str",
		Fixed: map[string]registry.FixedSpec{
			"str/lit":    {Out: TypeStr},
			"str/concat": {Args: registry.Args(TypeStr, TypeStr), Out: TypeStr},
			"str/len":    {Args: registry.Args(TypeStr), Out: TypeNum},
			"str/eq":     {Args: registry.Args(TypeStr, TypeStr), Out: TypeBool},
		},
		Lifts: map[registry.Tag]registry.LiftRule{
			registry.TagStr: {Kind: "str/lit", Out: TypeStr},
		},
		Handlers: fold.Handlers{
			"str/lit": litHandler,
			"str/concat": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				a, err := strArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				b, err := strArg(ctx, call, 1)
				if err != nil {
					return nil, err
				}
				return ir.Str(a + b), nil
			},
			"str/len": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				s, err := strArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				return ir.Int(int64(len(s))), nil
			},
			"str/eq": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				a, err := strArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				b, err := strArg(ctx, call, 1)
				if err != nil {
					return nil, err
				}
				return ir.Bool(a == b), nil
			},
		},
	}
}
