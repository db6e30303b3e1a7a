package dirty

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/arbor/internal/ir"
)

func TestAddAlias(t *testing.T) {
	d, err := AddAlias(From(sumIR()), "lhs", "a")
	require.NoError(t, err)

	marker, ok := d.Entries["d"]
	require.True(t, ok)
	assert.Equal(t, ir.KindAlias, marker.Kind)
	assert.Equal(t, ir.Str("lhs"), marker.Out)
	assert.Equal(t, []ir.NodeID{"a"}, marker.ChildIDs())

	// Markers are valid graph entries: the copy still commits.
	y, err := Commit(d)
	require.NoError(t, err)
	assert.Contains(t, y.Entries, ir.NodeID("d"))
}

func TestAddAliasMultiple(t *testing.T) {
	d, err := AddAlias(From(sumIR()), "lhs", "a")
	require.NoError(t, err)
	d, err = AddAlias(d, "rhs", "b")
	require.NoError(t, err)

	assert.Len(t, d.Entries, 5)
	assert.Equal(t, ir.Str("rhs"), d.Entries["e"].Out)
}

func TestAddAliasErrors(t *testing.T) {
	_, err := AddAlias(From(sumIR()), "", "a")
	assert.Error(t, err)

	_, err = AddAlias(From(sumIR()), "x", "zz")
	assert.Error(t, err)
}
