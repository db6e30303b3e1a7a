package corekind

import (
	"context"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// ScopeSet carries the nested-transaction wrapper kinds.
//
// scope/fresh re-evaluates its subtree under a fresh memo scope: a
// value memoized outside the wrapper is not visible inside it, so a
// retried block re-executes everything it contains. scope/shared is the
// explicit spelling of the default and exists so a wrap operation can
// pick either without changing semantics.
func ScopeSet() registry.KindSet {
	return registry.KindSet{
		Prefix: "scope",
		Fixed: map[string]registry.FixedSpec{
			"scope/fresh":  {Args: registry.Args(TypeNum), Out: TypeNum},
			"scope/shared": {Args: registry.Args(TypeNum), Out: TypeNum},
		},
		Handlers: fold.Handlers{
			"scope/fresh": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				return call.ArgFresh(ctx, 0)
			},
			"scope/shared": passthroughHandler,
		},
	}
}
