// Package tree is the permissive construction layer: call descriptions
// built before any validation. A Node is a kind tag plus positional
// arguments; arguments may be raw Go values, nested records or tuples,
// or further Nodes. Nodes are ephemeral - they exist only until the
// elaborator turns them into IR.
package tree

import (
	"fmt"
	"slices"
	"strings"
)

// Node is one call in the construction tree. It has no identity beyond
// its structural position.
type Node struct {
	Kind string
	Args []any
}

// Rec is a record-shaped argument. Field order carries no meaning.
type Rec map[string]any

// Tup is a tuple-shaped argument. Position is load-bearing.
type Tup []any

// New builds a construction node. Arguments are taken as-is; nothing is
// validated until elaboration.
func New(kind string, args ...any) *Node {
	return &Node{Kind: kind, Args: args}
}

// String renders the call tree for diagnostics.
func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	parts := make([]string, len(n.Args))
	for i, arg := range n.Args {
		parts[i] = formatArg(arg)
	}
	return n.Kind + "(" + strings.Join(parts, ", ") + ")"
}

func formatArg(arg any) string {
	switch v := arg.(type) {
	case *Node:
		return v.String()
	case Rec:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + formatArg(v[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Tup:
		parts := make([]string, len(v))
		for i, elem := range v {
			parts[i] = formatArg(elem)
		}
		return "(" + strings.Join(parts, ", ") + ")"
	case string:
		return fmt.Sprintf("%q", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
