package corekind

import (
	"context"
	"fmt"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
)

// litHandler returns the entry's stored literal. Literal leaves are
// synthesized by the elaborator's lift step, so a missing payload means
// the entry did not come from a lift.
func litHandler(_ context.Context, call *fold.Call) (ir.Value, error) {
	if call.Out() == nil {
		return nil, fmt.Errorf("literal entry %s has no stored value", call.ID())
	}
	return call.Out(), nil
}

// passthroughHandler evaluates and returns the first child.
func passthroughHandler(ctx context.Context, call *fold.Call) (ir.Value, error) {
	return call.Arg(ctx, 0)
}

func intArg(ctx context.Context, call *fold.Call, i int) (int64, error) {
	v, err := call.Arg(ctx, i)
	if err != nil {
		return 0, err
	}
	n, ok := v.(ir.Int)
	if !ok {
		return 0, fmt.Errorf("child %d of %s: expected num, got %T", i, call.Entry().Kind, v)
	}
	return int64(n), nil
}

func strArg(ctx context.Context, call *fold.Call, i int) (string, error) {
	v, err := call.Arg(ctx, i)
	if err != nil {
		return "", err
	}
	s, ok := v.(ir.Str)
	if !ok {
		return "", fmt.Errorf("child %d of %s: expected str, got %T", i, call.Entry().Kind, v)
	}
	return string(s), nil
}

func boolArg(ctx context.Context, call *fold.Call, i int) (bool, error) {
	v, err := call.Arg(ctx, i)
	if err != nil {
		return false, err
	}
	b, ok := v.(ir.Bool)
	if !ok {
		return false, fmt.Errorf("child %d of %s: expected bool, got %T", i, call.Entry().Kind, v)
	}
	return bool(b), nil
}
