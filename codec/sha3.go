package codec

import "golang.org/x/crypto/sha3"

// sha3Codec reuses the RLP codec's wire shape but hashes nodes with the
// SHA3-256 implementation from golang.org/x/crypto/sha3 rather than
// go-ethereum's Keccak256 — the two differ only in padding, giving a
// second, independently-implemented hash primitive to exercise the
// engine against (spec §4.2 calls for "SHA3-256 or equivalent").
type sha3Codec struct {
	rlpCodec
}

// SHA3 is the shared instance of the SHA3-256-backed codec.
var SHA3 Codec = sha3Codec{}

func (sha3Codec) HashOf(data []byte) []byte {
	h := sha3.Sum256(data)
	return h[:]
}

func (sha3Codec) CoerceHash(data []byte, isHash bool) []byte {
	if isHash {
		if len(data) != HashLength {
			panic("codec: CoerceHash called with non-hash-width data")
		}
		out := make([]byte, HashLength)
		copy(out, data)
		return out
	}
	h := sha3.Sum256(data)
	return h[:]
}
