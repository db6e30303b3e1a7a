package tree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	n := New("num/add", 3, New("num/neg", 4))
	assert.Equal(t, "num/add", n.Kind)
	assert.Len(t, n.Args, 2)
}

func TestString(t *testing.T) {
	tests := []struct {
		name     string
		node     *Node
		expected string
	}{
		{"nil", nil, "<nil>"},
		{"leaf", New("num/lit"), "num/lit()"},
		{"raw args", New("num/add", 3, 4), "num/add(3, 4)"},
		{"string arg quoted", New("str/len", "ab"), `str/len("ab")`},
		{"nested", New("num/neg", New("num/add", 1, 2)), "num/neg(num/add(1, 2))"},
		{"tuple", New("geo/pair", Tup{1, 2}), "geo/pair((1, 2))"},
		// Record fields render in sorted key order, never map order.
		{"record", New("geo/point", Rec{"y": 4, "x": 3, "z": 5}),
			"geo/point({x: 3, y: 4, z: 5})"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.node.String())
		})
	}
}
