package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/fold"
	"github.com/roach88/arbor/internal/ir"
)

func nopHandler(_ context.Context, _ *fold.Call) (ir.Value, error) {
	return ir.Int(0), nil
}

func numSet() KindSet {
	return KindSet{
		Prefix: "num",
		Fixed: map[string]FixedSpec{
			"num/lit": {Out: "num"},
			"num/add": {Args: Args("num", "num"), Out: "num"},
		},
		Lifts: map[Tag]LiftRule{
			TagInt: {Kind: "num/lit", Out: "num"},
		},
		Handlers: fold.Handlers{
			"num/lit": nopHandler,
			"num/add": nopHandler,
		},
	}
}

func TestComposeLookups(t *testing.T) {
	reg, handlers, err := Compose(numSet())
	require.NoError(t, err)

	spec, ok := reg.Fixed("num/add")
	require.True(t, ok)
	assert.Equal(t, ir.Type("num"), spec.Out)
	assert.Len(t, spec.Args, 2)

	rule, ok := reg.Lift(TagInt)
	require.True(t, ok)
	assert.Equal(t, "num/lit", rule.Kind)

	assert.True(t, reg.Known("num/lit"))
	assert.False(t, reg.Known("num/div"))
	assert.ElementsMatch(t, []string{"num/lit", "num/add"}, reg.Kinds())
	assert.Contains(t, handlers, "num/add")
}

func TestComposeTraitsSpanSets(t *testing.T) {
	traits := KindSet{
		Prefix: "core",
		Traits: map[string]TraitSpec{
			"add": {Out: "num", Impls: map[ir.Type]string{"num": "num/add"}},
		},
	}

	reg, _, err := Compose(numSet(), traits)
	require.NoError(t, err)

	spec, ok := reg.Trait("add")
	require.True(t, ok)
	assert.Equal(t, "num/add", spec.Impls["num"])
	assert.True(t, reg.Known("add"))
}

func TestComposeRejectsEmptyPrefix(t *testing.T) {
	_, _, err := Compose(KindSet{})
	require.Error(t, err)

	var ce *ComposeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeBadPrefix, ce.Code)
}

func TestComposeRejectsKindOutsideNamespace(t *testing.T) {
	bad := KindSet{
		Prefix: "num",
		Fixed:  map[string]FixedSpec{"str/lit": {Out: "str"}},
	}

	_, _, err := Compose(bad)
	var ce *ComposeError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, ErrCodeBadPrefix, ce.Code)
	assert.Equal(t, "str/lit", ce.Kind)
}

func TestComposeCollisions(t *testing.T) {
	tests := []struct {
		name   string
		second KindSet
	}{
		{
			"fixed kind defined twice",
			KindSet{Prefix: "num", Fixed: map[string]FixedSpec{"num/lit": {Out: "num"}}},
		},
		{
			"trait collides with fixed kind",
			KindSet{Prefix: "core", Traits: map[string]TraitSpec{"num/lit": {Out: "num"}}},
		},
		{
			"lift tag claimed twice",
			KindSet{Prefix: "int2", Lifts: map[Tag]LiftRule{TagInt: {Kind: "int2/lit", Out: "num"}},
				Fixed: map[string]FixedSpec{"int2/lit": {Out: "num"}}},
		},
		{
			"handler defined twice",
			KindSet{Prefix: "other", Handlers: fold.Handlers{"num/add": nopHandler}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Compose(numSet(), tt.second)
			require.Error(t, err)
			assert.True(t, IsCollision(err), "expected a collision error, got %v", err)
		})
	}
}

func TestComposeTraitDefinedTwice(t *testing.T) {
	trait := func(prefix string) KindSet {
		return KindSet{
			Prefix: prefix,
			Traits: map[string]TraitSpec{"eq": {Out: "bool"}},
		}
	}

	_, _, err := Compose(trait("a"), trait("b"))
	require.Error(t, err)
	assert.True(t, IsCollision(err))
}

func TestTagOf(t *testing.T) {
	tests := []struct {
		name  string
		input any
		tag   Tag
		ok    bool
	}{
		{"int", 1, TagInt, true},
		{"int64", int64(1), TagInt, true},
		{"string", "x", TagStr, true},
		{"bool", true, TagBool, true},
		{"float", 1.5, "", false},
		{"nil", nil, "", false},
		{"slice", []any{}, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, ok := TagOf(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.tag, tag)
		})
	}
}

func TestShapeStrings(t *testing.T) {
	shape := RecShape{
		"min": TupShape{TypeShape("num"), TypeShape("num")},
		"max": TupShape{TypeShape("num"), TypeShape("num")},
	}
	// Keys render sorted for stable error messages.
	assert.Equal(t, "{max: (num, num), min: (num, num)}", shape.String())
	assert.Equal(t, "num", TypeShape("num").String())
}
