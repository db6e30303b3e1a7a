package corekind

import (
	"context"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
	"github.com/roach88/arbor/internal/registry"
)

// GeoSet is the structural-kind pack: kinds whose single argument is a
// nested record or tuple rather than a flat list. The elaborator
// mirrors the argument shape into RecRef/TupRef structures and the
// handlers resolve them back into Rec/List values.
func GeoSet() registry.KindSet {
	return registry.KindSet{
		Prefix: "geo",
		Fixed: map[string]registry.FixedSpec{
			"geo/point": {
				Args: []registry.Shape{
					registry.RecShape{
						"x": registry.TypeShape(TypeNum),
						"y": registry.TypeShape(TypeNum),
					},
				},
				Out: TypePoint,
			},
			// A box nests tuples inside a record: min/max corners as
			// (x, y) pairs, each element a num node or liftable int.
			"geo/box": {
				Args: []registry.Shape{
					registry.RecShape{
						"min": registry.TupShape{
							registry.TypeShape(TypeNum),
							registry.TypeShape(TypeNum),
						},
						"max": registry.TupShape{
							registry.TypeShape(TypeNum),
							registry.TypeShape(TypeNum),
						},
					},
				},
				Out: TypeBox,
			},
			"geo/width": {Args: registry.Args(TypeBox), Out: TypeNum},
		},
		Handlers: fold.Handlers{
			"geo/point": structuralHandler,
			"geo/box":   structuralHandler,
			"geo/width": func(ctx context.Context, call *fold.Call) (ir.Value, error) {
				v, err := call.Arg(ctx, 0)
				if err != nil {
					return nil, err
				}
				box, ok := v.(ir.Rec)
				if !ok {
					return nil, &fold.EvalError{Code: fold.ErrCodeBadChild,
						ID: call.ID(), Kind: call.Entry().Kind,
						Message: "expected a box record"}
				}
				minX, err := tupleElem(box, "min", 0)
				if err != nil {
					return nil, err
				}
				maxX, err := tupleElem(box, "max", 0)
				if err != nil {
					return nil, err
				}
				return ir.Int(maxX - minX), nil
			},
		},
	}
}

// structuralHandler resolves the mirrored argument structure into the
// value of the same shape: RecRef to Rec, TupRef to List.
func structuralHandler(ctx context.Context, call *fold.Call) (ir.Value, error) {
	return call.Resolve(ctx, call.Entry().Children[0])
}

func tupleElem(rec ir.Rec, field string, i int) (int64, error) {
	list, ok := rec[field].(ir.List)
	if !ok || i >= len(list) {
		return 0, &fold.EvalError{Code: fold.ErrCodeBadChild,
			Message: "box field " + field + " is not a coordinate pair"}
	}
	n, ok := list[i].(ir.Int)
	if !ok {
		return 0, &fold.EvalError{Code: fold.ErrCodeBadChild,
			Message: "box coordinate is not a num"}
	}
	return int64(n), nil
}
