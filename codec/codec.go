// Package codec defines the wire-format contract the trie engine commits
// and decodes nodes through (spec §4.2), plus a concrete RLP
// implementation backed by go-ethereum's rlp package.
package codec

// HashLength is the width, in bytes, of a node hash. The RLP codec below
// uses 32, matching Keccak256/SHA3-256.
const HashLength = 32

// Kind identifies which of the four wire shapes a decoded blob took.
type Kind int

const (
	// KindEmpty is the canonical empty-node encoding.
	KindEmpty Kind = iota
	// KindPair is a two-element list: a leaf or an extension node.
	KindPair
	// KindValues is a seventeen-element list: a branch node.
	KindValues
	// KindHash is a bare HashLength-byte string: an unresolved node
	// reference.
	KindHash
)

// Decoded is the result of dispatching a blob's wire shape. Exactly the
// fields matching Kind are populated.
type Decoded struct {
	Kind Kind

	// Key, Value hold a KindPair's two elements. Value may itself be a
	// raw, still-encoded child (list or hash) rather than a leaf value;
	// the caller (node.Decode) interprets it once it knows whether the
	// key carries the leaf terminator.
	Key, Value []byte

	// Values holds a KindValues branch's seventeen slots: sixteen child
	// references followed by the value slot (raw, as on the wire — an
	// empty-encoding slot means "no value").
	Values [][]byte

	// Hash holds a KindHash reference's raw hash bytes.
	Hash []byte
}

// Codec is the external collaborator of spec §4.2/§6: it serializes a
// node's wire shape to bytes and back, and supplies the hash primitive
// the trie stamps nodes with.
type Codec interface {
	// EncodeEmpty returns the canonical empty-node encoding.
	EncodeEmpty() []byte
	// EncodePair returns the two-element list encoding of a leaf or
	// extension node. k and v must already be individually encoded
	// (e.g. via EncodeRaw or a nested EncodePair/EncodeValues).
	EncodePair(k, v []byte) []byte
	// EncodeValues returns the seventeen-element list encoding of a
	// branch node. Each element must already be individually encoded.
	EncodeValues(vs [][]byte) []byte
	// EncodeRaw wraps a raw byte string (a compact-encoded key, a leaf
	// value, or a node hash) so it round-trips as a single wire
	// element.
	EncodeRaw(raw []byte) []byte

	// Decode dispatches data's wire shape into a Decoded value.
	Decode(data []byte) (Decoded, error)

	// HashOf returns the HashLength-byte hash of data.
	HashOf(data []byte) []byte
	// CoerceHash returns a HashLength-byte hash: a copy of data if
	// isHash is true (data must already be HashLength bytes), or
	// HashOf(data) otherwise.
	CoerceHash(data []byte, isHash bool) []byte
}
