package node

import (
	"bytes"
	"fmt"

	"github.com/cita-io/gmpt/codec"
	"github.com/cita-io/gmpt/nibbles"
)

// Decode interprets the wire encoding of a single node, per spec §4.4. It
// does not recurse into children beyond constructing the appropriate
// Node/HashNode shell — resolving a HashNode requires a database lookup,
// which lives at the trie engine level.
func Decode(c codec.Codec, data []byte) (Node, error) {
	d, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	switch d.Kind {
	case codec.KindEmpty:
		return nil, nil
	case codec.KindHash:
		h := make([]byte, len(d.Hash))
		copy(h, d.Hash)
		return HashNode(h), nil
	case codec.KindPair:
		key := nibbles.FromCompact(d.Key)
		if key.IsLeaf() {
			return &Leaf{Key: key, Value: d.Value}, nil
		}
		child, err := decodeRef(c, d.Value)
		if err != nil {
			return nil, fmt.Errorf("node: decoding extension child: %w", err)
		}
		return &Extension{Prefix: key, Child: child}, nil
	case codec.KindValues:
		var b Branch
		for i := 0; i < 16; i++ {
			child, err := decodeRef(c, d.Values[i])
			if err != nil {
				return nil, fmt.Errorf("node: decoding branch child %d: %w", i, err)
			}
			b.Children[i] = child
		}
		// Compare the re-encoded value slot against the codec's own
		// canonical empty encoding byte-for-byte, not merely by length,
		// to distinguish "no value" from "value = empty bytes" (the
		// latter never arises from a genuine commit, but the decoder
		// must still be conservative about it).
		if !bytes.Equal(c.EncodeRaw(d.Values[16]), c.EncodeEmpty()) {
			b.Value = d.Values[16]
		}
		return &b, nil
	default:
		return nil, fmt.Errorf("node: unrecognized decoded kind %d", d.Kind)
	}
}

// decodeRef interprets a child/value reference already extracted by the
// codec: raw, still-encoded bytes shorter than a hash are decoded
// recursively (an inlined embedded node); exactly HashLength bytes are a
// HashNode; a zero-length reference is the Empty child.
//
// This mirrors try_decode_hash_node from the original implementation,
// generalized to also cover the non-hash (inlined) case the codec
// already separated out.
func decodeRef(c codec.Codec, raw []byte) (Node, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) == codec.HashLength {
		return HashNode(c.CoerceHash(raw, true)), nil
	}
	return Decode(c, raw)
}
