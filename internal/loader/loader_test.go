package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/tree"
)

func TestLoadBytesFlatNode(t *testing.T) {
	node, err := LoadBytes([]byte(`
		kind: "num/add"
		args: [3, 4]
	`), "add.cue")
	require.NoError(t, err)

	assert.Equal(t, "num/add", node.Kind)
	assert.Equal(t, []any{int64(3), int64(4)}, node.Args)
}

func TestLoadBytesNestedNode(t *testing.T) {
	node, err := LoadBytes([]byte(`
		kind: "num/mul"
		args: [
			{kind: "num/add", args: [1, 2]},
			5,
		]
	`), "nested.cue")
	require.NoError(t, err)

	require.Len(t, node.Args, 2)
	inner, ok := node.Args[0].(*tree.Node)
	require.True(t, ok)
	assert.Equal(t, "num/add", inner.Kind)
	assert.Equal(t, []any{int64(1), int64(2)}, inner.Args)
	assert.Equal(t, int64(5), node.Args[1])
}

func TestLoadBytesRecordArg(t *testing.T) {
	node, err := LoadBytes([]byte(`
		kind: "geo/point"
		args: [{x: 3, y: {kind: "num/neg", args: [4]}}]
	`), "point.cue")
	require.NoError(t, err)

	require.Len(t, node.Args, 1)
	rec, ok := node.Args[0].(tree.Rec)
	require.True(t, ok)
	assert.Equal(t, int64(3), rec["x"])

	inner, ok := rec["y"].(*tree.Node)
	require.True(t, ok)
	assert.Equal(t, "num/neg", inner.Kind)
}

func TestLoadBytesTupleArg(t *testing.T) {
	node, err := LoadBytes([]byte(`
		kind: "geo/box"
		args: [{min: [1, 2], max: [11, 12]}]
	`), "box.cue")
	require.NoError(t, err)

	rec := node.Args[0].(tree.Rec)
	assert.Equal(t, tree.Tup{int64(1), int64(2)}, rec["min"])
	assert.Equal(t, tree.Tup{int64(11), int64(12)}, rec["max"])
}

func TestLoadBytesRawTypes(t *testing.T) {
	node, err := LoadBytes([]byte(`
		kind: "mix"
		args: ["hello", true, -7]
	`), "raw.cue")
	require.NoError(t, err)
	assert.Equal(t, []any{"hello", true, int64(-7)}, node.Args)
}

func TestLoadBytesJSONDocument(t *testing.T) {
	// JSON is a CUE subset, so JSON documents go through the same path.
	node, err := LoadBytes([]byte(`{"kind": "num/add", "args": [3, 4]}`), "add.json")
	require.NoError(t, err)
	assert.Equal(t, "num/add", node.Kind)
	assert.Equal(t, []any{int64(3), int64(4)}, node.Args)
}

func TestLoadBytesMissingKind(t *testing.T) {
	_, err := LoadBytes([]byte(`args: [1]`), "bad.cue")
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "kind", le.Field)
}

func TestLoadBytesNestedMissingKind(t *testing.T) {
	_, err := LoadBytes([]byte(`
		kind: "num/neg"
		args: [{kind: "num/add", args: [{oops: 1, kind: "x"}, 2]}]
	`), "bad.cue")
	require.NoError(t, err) // a struct carrying kind is a node, even with extra fields

	_, err = LoadBytes([]byte(`
		kind: "geo/point"
		args: [{x: {args: [1]}, y: 2}]
	`), "bad.cue")
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Equal(t, "kind", le.Field)
}

func TestLoadBytesRejectsFloats(t *testing.T) {
	_, err := LoadBytes([]byte(`
		kind: "num/add"
		args: [2.5, 4]
	`), "float.cue")
	require.Error(t, err)

	var le *LoadError
	require.ErrorAs(t, err, &le)
	assert.Contains(t, le.Message, "float")
}

func TestLoadBytesSyntaxError(t *testing.T) {
	_, err := LoadBytes([]byte(`kind: "unterminated`), "broken.cue")
	require.Error(t, err)

	var le *LoadError
	if assert.ErrorAs(t, err, &le) {
		assert.Equal(t, "broken.cue", le.Pos.Filename())
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.cue")
	require.NoError(t, os.WriteFile(path, []byte(`
		kind: "num/add"
		args: [3, 4]
	`), 0o644))

	node, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "num/add", node.Kind)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.cue"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read tree document")
}
