package codec

import (
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"
)

// rlpCodec is the reference codec of spec §6: RLP wire format, 32-byte
// Keccak256 hashes (the "SHA3-256 or equivalent" primitive of §4.2).
type rlpCodec struct{}

// RLP is the shared instance of the reference codec. It carries no state,
// so a single value can be reused across tries.
var RLP Codec = rlpCodec{}

func (rlpCodec) EncodeEmpty() []byte {
	enc, _ := rlp.EncodeToBytes([]byte{})
	return enc
}

func (rlpCodec) EncodeRaw(raw []byte) []byte {
	enc, _ := rlp.EncodeToBytes(raw)
	return enc
}

func (rlpCodec) EncodePair(k, v []byte) []byte {
	w := rlp.NewEncoderBuffer(nil)
	offset := w.List()
	w.Write(k)
	w.Write(v)
	w.ListEnd(offset)
	return w.ToBytes()
}

func (rlpCodec) EncodeValues(vs [][]byte) []byte {
	w := rlp.NewEncoderBuffer(nil)
	offset := w.List()
	for _, v := range vs {
		w.Write(v)
	}
	w.ListEnd(offset)
	return w.ToBytes()
}

func (rlpCodec) HashOf(data []byte) []byte {
	h := crypto.Keccak256(data)
	return h
}

func (rlpCodec) CoerceHash(data []byte, isHash bool) []byte {
	if isHash {
		if len(data) != HashLength {
			panic("codec: CoerceHash called with non-hash-width data")
		}
		out := make([]byte, HashLength)
		copy(out, data)
		return out
	}
	return crypto.Keccak256(data)
}

// Decode dispatches data's top-level wire shape. For KindPair, Value is
// either the decoded leaf-value bytes (the value sub-element was itself a
// plain RLP string) or the complete still-encoded sub-node bytes (the
// value sub-element was a list) — per the §9 "leaky decode" note, callers
// that need a leaf's raw value must first check the key's terminator
// flag; an extension's child is resolved via the same raw-vs-decoded
// rule applied to KindValues' Values below.
//
// For KindValues, Values holds the seventeen wire slots. Slots 0..15
// follow the same raw-vs-decoded rule as a pair's value; slot 16 (the
// branch's value) is always decoded content, since it is never itself a
// nested node.
func (rlpCodec) Decode(data []byte) (Decoded, error) {
	kind, content, _, err := rlp.Split(data)
	if err != nil {
		return Decoded{}, fmt.Errorf("codec: malformed node: %w", err)
	}
	switch kind {
	case rlp.String:
		switch len(content) {
		case 0:
			return Decoded{Kind: KindEmpty}, nil
		case HashLength:
			return Decoded{Kind: KindHash, Hash: content}, nil
		default:
			return Decoded{}, fmt.Errorf("codec: invalid top-level string length %d", len(content))
		}
	case rlp.List:
		elems, _, err := rlp.SplitList(data)
		if err != nil {
			return Decoded{}, fmt.Errorf("codec: malformed list: %w", err)
		}
		count, err := rlp.CountValues(elems)
		if err != nil {
			return Decoded{}, fmt.Errorf("codec: malformed list: %w", err)
		}
		switch count {
		case 2:
			return decodePair(elems)
		case 17:
			return decodeValues(elems)
		default:
			return Decoded{}, fmt.Errorf("codec: invalid number of list elements: %d", count)
		}
	default:
		return Decoded{}, fmt.Errorf("codec: unrecognized RLP kind")
	}
}

func decodePair(elems []byte) (Decoded, error) {
	key, rest, err := rlp.SplitString(elems)
	if err != nil {
		return Decoded{}, fmt.Errorf("codec: invalid pair key: %w", err)
	}
	value, err := decodeRef(rest)
	if err != nil {
		return Decoded{}, fmt.Errorf("codec: invalid pair value: %w", err)
	}
	return Decoded{Kind: KindPair, Key: key, Value: value}, nil
}

func decodeValues(elems []byte) (Decoded, error) {
	values := make([][]byte, 17)
	cur := elems
	for i := 0; i < 16; i++ {
		kind, content, rest, err := rlp.Split(cur)
		if err != nil {
			return Decoded{}, fmt.Errorf("codec: invalid branch child %d: %w", i, err)
		}
		if kind == rlp.List {
			size := len(cur) - len(rest)
			if size >= HashLength {
				return Decoded{}, fmt.Errorf("codec: oversized embedded node at child %d (%d bytes)", i, size)
			}
			values[i] = cur[:size]
		} else {
			values[i] = content
		}
		cur = rest
	}
	val, _, err := rlp.SplitString(cur)
	if err != nil {
		return Decoded{}, fmt.Errorf("codec: invalid branch value slot: %w", err)
	}
	values[16] = val
	return Decoded{Kind: KindValues, Values: values}, nil
}

// decodeRef extracts a single pair-value or branch-child reference from
// buf, following the same raw-vs-decoded convention as decodeValues:
// a plain string is returned as its bare content (hash or leaf value),
// a list is returned as its complete still-encoded span.
func decodeRef(buf []byte) ([]byte, error) {
	kind, content, rest, err := rlp.Split(buf)
	if err != nil {
		return nil, err
	}
	if kind == rlp.List {
		size := len(buf) - len(rest)
		return buf[:size], nil
	}
	return content, nil
}
