package ir

import (
	"fmt"
	"slices"
)

// NodeID identifies one entry in the adjacency map.
//
// Ids are spreadsheet-style base-26 strings ("a", "b", ..., "z", "aa", ...)
// assigned from a single monotonically increasing counter, so ids are a
// deterministic trace of elaboration order, not a semantic property.
// Creation order is shortlex order: compare lengths first, then bytes.
type NodeID string

// FormatOrdinal converts a zero-based ordinal to its base-26 id.
// 0 -> "a", 25 -> "z", 26 -> "aa".
func FormatOrdinal(n int) NodeID {
	if n < 0 {
		panic(fmt.Sprintf("negative ordinal: %d", n))
	}
	// Bijective base-26: repeatedly peel the low digit.
	buf := make([]byte, 0, 4)
	for {
		buf = append(buf, byte('a'+n%26))
		n = n/26 - 1
		if n < 0 {
			break
		}
	}
	slices.Reverse(buf)
	return NodeID(buf)
}

// CompareIDs orders ids by creation order (shortlex).
// Plain lexicographic comparison would put "aa" before "z".
func CompareIDs(a, b NodeID) int {
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// SortIDs sorts ids in creation order, in place.
func SortIDs(ids []NodeID) {
	slices.SortFunc(ids, CompareIDs)
}

// Counter is the id allocator threaded through elaboration and mutation.
//
// It is an explicit value, never ambient state: every operation that
// synthesizes entries receives a Counter and returns (or embeds) the
// advanced one, keeping id assignment deterministic and testable.
type Counter struct {
	next int
}

// NewCounter creates a counter whose first id is FormatOrdinal(next).
func NewCounter(next int) Counter {
	return Counter{next: next}
}

// Next returns a fresh id and the advanced counter.
func (c Counter) Next() (NodeID, Counter) {
	id := FormatOrdinal(c.next)
	return id, Counter{next: c.next + 1}
}

// Ordinal returns the ordinal the next id will be formatted from.
func (c Counter) Ordinal() int {
	return c.next
}
