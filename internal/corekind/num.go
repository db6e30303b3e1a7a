package corekind

import (
	"context"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// NumSet is the numeric pack: integer literals and arithmetic.
// Raw Go ints lift to num/lit leaves.
func NumSet() registry.KindSet {
	return registry.KindSet{
		Prefix: "num",
		Fixed: map[string]registry.FixedSpec{
			"num/lit": {Out: TypeNum},
			"num/add": {Args: registry.Args(TypeNum, TypeNum), Out: TypeNum},
			"num/sub": {Args: registry.Args(TypeNum, TypeNum), Out: TypeNum},
			"num/mul": {Args: registry.Args(TypeNum, TypeNum), Out: TypeNum},
			"num/neg": {Args: registry.Args(TypeNum), Out: TypeNum},
			"num/eq":  {Args: registry.Args(TypeNum, TypeNum), Out: TypeBool},
		},
		Lifts: map[registry.Tag]registry.LiftRule{
			registry.TagInt: {Kind: "num/lit", Out: TypeNum},
		},
		Handlers: fold.Handlers{
			"num/lit": litHandler,
			"num/add": numBinOp(func(a, b int64) int64 { return a + b }),
			"num/sub": numBinOp(func(a, b int64) int64 { return a - b }),
			"num/mul": numBinOp(func(a, b int64) int64 { return a * b }),
			"num/neg": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				n, err := intArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				return ir.Int(-n), nil
			},
			"num/eq": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				a, err := intArg(ctx, call, 0)
				if err != nil {
					return nil, err
				}
				b, err := intArg(ctx, call, 1)
				if err != nil {
					return nil, err
				}
				return ir.Bool(a == b), nil
			},
		},
	}
}

func numBinOp(op func(a, b int64) int64) fold.Handler {
	return func(ctx context.Context, call *fold.Call) (ir.Value, error) {
		a, err := intArg(ctx, call, 0)
		if err != nil {
			return nil, err
		}
		b, err := intArg(ctx, call, 1)
		if err != nil {
			return nil, err
		}
		return ir.Int(op(a, b)), nil
	}
}
