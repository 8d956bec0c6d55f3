// Package node implements the node algebra of spec §3/§4.4: the four
// structural node variants (a nil Node stands for the canonical Empty)
// plus the HashNode reference marker, and their wire encode/decode.
package node

import (
	"fmt"

	"github.com/cita-io/gmpt/nibbles"
)

// Node is implemented by every node variant. The canonical Empty node is
// represented as a nil Node (checked with a plain `== nil` or a type
// switch's nil case), matching the teacher's convention.
type Node interface {
	isNode()
}

// Leaf is a terminal mapping. Key always carries the nibble terminator
// (invariant 3).
type Leaf struct {
	Key   nibbles.Path
	Value []byte
}

// Extension stores a shared nibble prefix leading to a single child. The
// child is never nil (Empty) and never another *Extension — both
// collapse via degeneration (invariant 1). Prefix never carries the
// terminator (invariant 3).
type Extension struct {
	Prefix nibbles.Path
	Child  Node
}

// Branch has sixteen child slots keyed by the next nibble, plus an
// optional value at the terminator position. A well-formed Branch always
// has at least two occupied slots, or one occupied slot together with a
// value (invariant 2) — anything less is degenerated away.
type Branch struct {
	Children [16]Node
	Value    []byte
}

// HashNode is an unresolved reference to a node persisted in the
// database, keyed by its hash.
type HashNode []byte

func (*Leaf) isNode()      {}
func (*Extension) isNode() {}
func (*Branch) isNode()    {}
func (HashNode) isNode()   {}

// Copy returns a shallow copy of a Branch, suitable for copy-on-write
// replacement of a single child slot.
func (b *Branch) Copy() *Branch {
	cp := *b
	return &cp
}

// Occupied returns the indices of the Branch's non-nil children and
// whether a value is set.
func (b *Branch) Occupied() (indices []int, hasValue bool) {
	for i, c := range b.Children {
		if c != nil {
			indices = append(indices, i)
		}
	}
	return indices, len(b.Value) > 0
}

// String renders a node for debugging, following the teacher's
// fstring-based pretty printer.
func String(n Node) string {
	switch v := n.(type) {
	case nil:
		return "<empty>"
	case *Leaf:
		return fmt.Sprintf("Leaf{key=%x val=%x}", []byte(v.Key), v.Value)
	case *Extension:
		return fmt.Sprintf("Extension{prefix=%x -> %s}", []byte(v.Prefix), String(v.Child))
	case *Branch:
		return fmt.Sprintf("Branch{value=%x}", v.Value)
	case HashNode:
		return fmt.Sprintf("Hash(%x)", []byte(v))
	default:
		return "?"
	}
}
