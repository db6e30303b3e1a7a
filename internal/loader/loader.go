// Package loader decodes construction trees from CUE documents.
//
// A document is a struct with a "kind" field and an optional "args"
// list. Inside args, a struct carrying "kind" is a nested node, any
// other struct is a record argument, a list is a tuple argument, and
// strings, integers, and booleans pass through as raw values for the
// elaborator's lift step. JSON documents load through the same path;
// CUE is a superset.
package loader

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/arbor/internal/tree"
)

// Load reads and decodes a construction tree from a file.
func Load(path string) (*tree.Node, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tree document: %w", err)
	}
	return LoadBytes(src, path)
}

// LoadBytes decodes a construction tree from CUE source.
// The filename is used in error positions only.
func LoadBytes(src []byte, filename string) (*tree.Node, error) {
	ctx := cuecontext.New()
	v := ctx.CompileBytes(src, cue.Filename(filename))
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}
	return decodeNode(v)
}

// decodeNode decodes a struct with "kind" and optional "args" fields.
func decodeNode(v cue.Value) (*tree.Node, error) {
	kindVal := v.LookupPath(cue.ParsePath("kind"))
	if !kindVal.Exists() {
		return nil, &LoadError{
			Field:   "kind",
			Message: "node is missing its kind field",
			Pos:     v.Pos(),
		}
	}
	kind, err := kindVal.String()
	if err != nil {
		return nil, formatCUEError(err)
	}

	node := &tree.Node{Kind: kind}

	argsVal := v.LookupPath(cue.ParsePath("args"))
	if !argsVal.Exists() {
		return node, nil
	}
	iter, err := argsVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	for iter.Next() {
		arg, err := decodeArg(iter.Value())
		if err != nil {
			return nil, err
		}
		node.Args = append(node.Args, arg)
	}
	return node, nil
}

// decodeArg decodes one argument position.
func decodeArg(v cue.Value) (any, error) {
	switch v.Kind() {
	case cue.StructKind:
		// A struct with a "kind" field is a nested node; anything else
		// is a record argument.
		if v.LookupPath(cue.ParsePath("kind")).Exists() {
			return decodeNode(v)
		}
		return decodeRec(v)

	case cue.ListKind:
		return decodeTup(v)

	case cue.StringKind:
		return v.String()

	case cue.IntKind:
		return v.Int64()

	case cue.BoolKind:
		return v.Bool()

	case cue.FloatKind, cue.NumberKind:
		return nil, &LoadError{
			Field:   "args",
			Message: "float arguments are not supported: no lift rule can name them",
			Pos:     v.Pos(),
		}

	default:
		return nil, &LoadError{
			Field:   "args",
			Message: fmt.Sprintf("unsupported argument kind: %v", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

func decodeRec(v cue.Value) (tree.Rec, error) {
	iter, err := v.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}
	rec := make(tree.Rec)
	for iter.Next() {
		arg, err := decodeArg(iter.Value())
		if err != nil {
			return nil, err
		}
		rec[iter.Label()] = arg
	}
	return rec, nil
}

func decodeTup(v cue.Value) (tree.Tup, error) {
	iter, err := v.List()
	if err != nil {
		return nil, formatCUEError(err)
	}
	var tup tree.Tup
	for iter.Next() {
		arg, err := decodeArg(iter.Value())
		if err != nil {
			return nil, err
		}
		tup = append(tup, arg)
	}
	return tup, nil
}

// LoadError is a decode error with source position.
type LoadError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &LoadError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}
	return err
}
