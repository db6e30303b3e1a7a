// Package ir defines the flat intermediate representation produced by
// elaboration: an adjacency map of kind-tagged entries addressed by
// short, sortable node ids, with one designated root.
//
// An IR value is immutable once built. Every transformation in this
// repository (select/map/replace, dirty edits, GC) produces a new IR
// and shares untouched entries by identity.
package ir
