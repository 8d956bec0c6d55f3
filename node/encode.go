package node

import "github.com/cita-io/gmpt/codec"

// EncodeChild produces the wire contribution of a single child/value
// reference, given the already-settled encode_node result for that
// child (resolve is supplied by the caller, since hashing and caching a
// child is a trie-engine concern, not a structural one — see
// committer.go). A nil encoded slice is written as the codec's own
// empty encoding so a missing child round-trips as Empty.
func EncodeChild(c codec.Codec, encoded []byte) []byte {
	if len(encoded) == 0 {
		return c.EncodeEmpty()
	}
	if len(encoded) == codec.HashLength {
		return c.EncodeRaw(encoded)
	}
	return encoded
}

// EncodeRaw produces the single still-encoded wire span for n (spec
// §4.4's encode_node_raw), delegating each child's settled bytes to
// resolve. resolve must return either a HashLength-byte hash or the
// child's full inline encoding (anything shorter than a hash), matching
// what encode_node would have produced for that child.
func EncodeRaw(c codec.Codec, n Node, resolve func(Node) []byte) []byte {
	switch v := n.(type) {
	case nil:
		return c.EncodeEmpty()
	case *Leaf:
		return c.EncodePair(c.EncodeRaw(v.Key.Compact()), c.EncodeRaw(v.Value))
	case *Extension:
		child := resolve(v.Child)
		return c.EncodePair(c.EncodeRaw(v.Prefix.Compact()), EncodeChild(c, child))
	case *Branch:
		values := make([][]byte, 17)
		for i := 0; i < 16; i++ {
			values[i] = EncodeChild(c, resolve(v.Children[i]))
		}
		if len(v.Value) == 0 {
			values[16] = c.EncodeEmpty()
		} else {
			values[16] = c.EncodeRaw(v.Value)
		}
		return c.EncodeValues(values)
	case HashNode:
		panic("node: EncodeRaw called directly on a HashNode; resolve it first")
	default:
		panic("node: EncodeRaw called on unrecognized node type")
	}
}
