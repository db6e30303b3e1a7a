package ir

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// addIR is the graph for add(3, 4): two literal leaves and an operator
// root, ids assigned child-first.
func addIR() IR {
	return IR{
		Root: "c",
		Entries: map[NodeID]Entry{
			"a": {Kind: "num/lit", Out: Int(3)},
			"b": {Kind: "num/lit", Out: Int(4)},
			"c": {Kind: "num/add", Children: []Ref{IDRef("a"), IDRef("b")}},
		},
		Counter: NewCounter(3),
		Out:     "num",
	}
}

// boxIR exercises structural mirrors: a record of tuples referencing
// literal leaves.
func boxIR() IR {
	return IR{
		Root: "e",
		Entries: map[NodeID]Entry{
			"a": {Kind: "num/lit", Out: Int(0)},
			"b": {Kind: "num/lit", Out: Int(1)},
			"c": {Kind: "num/lit", Out: Int(10)},
			"d": {Kind: "num/lit", Out: Int(5)},
			"e": {Kind: "geo/box", Children: []Ref{RecRef{
				"min": TupRef{IDRef("a"), IDRef("b")},
				"max": TupRef{IDRef("c"), IDRef("d")},
			}}},
		},
		Counter: NewCounter(5),
		Out:     "box",
	}
}

func TestCanonicalDumpShape(t *testing.T) {
	dump := addIR().CanonicalDump()

	assert.Equal(t, 3, dump["counter"])
	assert.Equal(t, "c", dump["root"])
	assert.Equal(t, "num", dump["out"])

	entries := dump["entries"].(map[string]any)
	require.Len(t, entries, 3)

	root := entries["c"].(map[string]any)
	assert.Equal(t, "num/add", root["kind"])
	assert.Equal(t, []any{"a", "b"}, root["children"])
	_, hasOut := root["out"]
	assert.False(t, hasOut, "operator entries carry no literal")

	leaf := entries["a"].(map[string]any)
	assert.Equal(t, Int(3), leaf["out"])
}

func TestParseDumpRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		x    IR
	}{
		{"flat", addIR()},
		{"structural", boxIR()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Through canonical JSON and back, as the snapshot store
			// does it.
			body, err := MarshalCanonical(tt.x.CanonicalDump())
			require.NoError(t, err)

			dec := json.NewDecoder(strings.NewReader(string(body)))
			dec.UseNumber()
			var dump map[string]any
			require.NoError(t, dec.Decode(&dump))

			back, err := ParseDump(dump)
			require.NoError(t, err)

			assert.Equal(t, tt.x.Root, back.Root)
			assert.Equal(t, tt.x.Out, back.Out)
			assert.Equal(t, tt.x.Counter.Ordinal(), back.Counter.Ordinal())

			// Entry-level equality up to nil-vs-empty child slices:
			// the fingerprint covers the full canonical content.
			assert.Equal(t, MustFingerprint(tt.x), MustFingerprint(back))
			for id, want := range tt.x.Entries {
				got, ok := back.Entries[id]
				require.True(t, ok, "entry %s survived", id)
				assert.Equal(t, want.Kind, got.Kind)
				assert.Equal(t, want.Out, got.Out)
				assert.Equal(t, want.ChildIDs(), got.ChildIDs())
			}
		})
	}
}

func TestParseDumpErrors(t *testing.T) {
	tests := []struct {
		name string
		dump map[string]any
	}{
		{"missing counter", map[string]any{"root": "a", "out": "num", "entries": map[string]any{}}},
		{"missing root", map[string]any{"counter": 1, "out": "num", "entries": map[string]any{}}},
		{"entries not object", map[string]any{"counter": 1, "root": "a", "out": "num", "entries": "x"}},
		{"entry not object", map[string]any{"counter": 1, "root": "a", "out": "num",
			"entries": map[string]any{"a": "x"}}},
		{"fractional counter", map[string]any{"counter": 1.5, "root": "a", "out": "num",
			"entries": map[string]any{}}},
		{"fractional counter as json.Number", map[string]any{"counter": json.Number("1.5"),
			"root": "a", "out": "num", "entries": map[string]any{}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseDump(tt.dump)
			assert.Error(t, err)
		})
	}
}

func TestFingerprintStability(t *testing.T) {
	fp1, err := Fingerprint(addIR())
	require.NoError(t, err)
	fp2, err := Fingerprint(addIR())
	require.NoError(t, err)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64) // hex sha256
}

func TestFingerprintDistinguishesContent(t *testing.T) {
	base := addIR()

	changed := addIR()
	changed.Entries["a"] = Entry{Kind: "num/lit", Out: Int(99)}

	fpBase := MustFingerprint(base)
	fpChanged := MustFingerprint(changed)
	assert.NotEqual(t, fpBase, fpChanged)
}

func TestRunHashBindsFingerprint(t *testing.T) {
	h1, err := RunHash("fp1", Int(7))
	require.NoError(t, err)
	h2, err := RunHash("fp2", Int(7))
	require.NoError(t, err)
	h3, err := RunHash("fp1", Int(8))
	require.NoError(t, err)

	assert.NotEqual(t, h1, h2)
	assert.NotEqual(t, h1, h3)
}

func TestChildIDsStructural(t *testing.T) {
	e := boxIR().Entries["e"]
	// Record fields visit in sorted key order: max before min.
	assert.Equal(t, []NodeID{"c", "d", "a", "b"}, e.ChildIDs())
}

func TestRewriteRefStructural(t *testing.T) {
	ref := RecRef{
		"min": TupRef{IDRef("a"), IDRef("b")},
		"max": TupRef{IDRef("a"), IDRef("c")},
	}

	got := RewriteRef(ref, "a", "z")
	assert.Equal(t, RecRef{
		"min": TupRef{IDRef("z"), IDRef("b")},
		"max": TupRef{IDRef("z"), IDRef("c")},
	}, got)

	// Original is untouched.
	assert.Equal(t, IDRef("a"), ref["min"].(TupRef)[0])
}
