// Package nibbles implements the half-byte path algebra used by the trie:
// raw-byte/nibble conversion, Ethereum-style hex-prefix (compact) encoding,
// and the slicing/common-prefix/join operations the trie engine needs to
// walk and split paths.
package nibbles

import "bytes"

// terminator marks the end of a leaf key. It never appears in a raw byte
// encoding, only in the in-memory nibble representation.
const terminator = 16

// Path is a sequence of nibbles (0..15), optionally ending in the
// terminator value 16 to mark a leaf key.
type Path []byte

// FromBytes splits each byte of key into a high nibble then a low nibble.
// If term is true, the terminator nibble is appended.
func FromBytes(key []byte, term bool) Path {
	l := len(key)*2 + 1
	var p Path
	if term {
		p = make(Path, l)
	} else {
		p = make(Path, l-1)
	}
	for i, b := range key {
		p[i*2] = b / 16
		p[i*2+1] = b % 16
	}
	if term {
		p[l-1] = terminator
	}
	return p
}

// Bytes packs a nibble path (without its terminator, if any) back into raw
// bytes. The path must have even length once the terminator is stripped.
func (p Path) Bytes() []byte {
	n := p
	if n.IsLeaf() {
		n = n[:len(n)-1]
	}
	if len(n)%2 != 0 {
		panic("nibbles: odd-length path cannot be converted to bytes")
	}
	buf := make([]byte, len(n)/2)
	for i := 0; i < len(buf); i++ {
		buf[i] = n[i*2]<<4 | n[i*2+1]
	}
	return buf
}

// Len returns the number of nibbles, including the terminator if present.
func (p Path) Len() int { return len(p) }

// At returns the nibble at position i.
func (p Path) At(i int) byte { return p[i] }

// IsLeaf reports whether the path carries the terminator nibble.
func (p Path) IsLeaf() bool {
	return len(p) > 0 && p[len(p)-1] == terminator
}

// IsEmpty reports whether the path has no nibbles at all (not even a
// terminator).
func (p Path) IsEmpty() bool { return len(p) == 0 }

// Slice returns p[i:j], sharing the backing array.
func (p Path) Slice(i, j int) Path { return p[i:j] }

// Rest returns p[i:].
func (p Path) Rest(i int) Path { return p[i:] }

// Equal reports whether two paths hold the same nibbles (terminator
// included).
func (p Path) Equal(o Path) bool { return bytes.Equal(p, o) }

// CommonPrefix returns the length of the longest common run of nibbles
// between p and o, comparing positionally up to the shorter length.
func (p Path) CommonPrefix(o Path) int {
	max := len(p)
	if len(o) < max {
		max = len(o)
	}
	var i int
	for i = 0; i < max; i++ {
		if p[i] != o[i] {
			break
		}
	}
	return i
}

// Terminal returns the single-nibble path containing only the
// terminator, the key remaining once a branch's value slot is reached.
func Terminal() Path { return Path{terminator} }

// Join concatenates p with o, producing a new path. The terminator state
// of the result follows o: if o carries the terminator, so does the join;
// if it doesn't, neither does the join. This matches joining an
// extension's stripped prefix back onto a leaf/extension child's path.
func Join(p, o Path) Path {
	out := make(Path, 0, len(p)+len(o))
	out = append(out, p...)
	out = append(out, o...)
	return out
}

// Compact encodes p using Ethereum's hex-prefix scheme: a header byte
// carrying the leaf flag and odd-length parity, followed by the
// remaining nibbles packed two to a byte.
func (p Path) Compact() []byte {
	n := p
	leaf := n.IsLeaf()
	if leaf {
		n = n[:len(n)-1]
	}
	odd := len(n)%2 == 1

	var header byte
	if leaf {
		header |= 2 << 4
	}
	if odd {
		header |= 1 << 4
	}

	buf := make([]byte, len(n)/2+1)
	buf[0] = header
	rest := n
	if odd {
		buf[0] |= rest[0]
		rest = rest[1:]
	}
	for i := 0; i < len(rest)/2; i++ {
		buf[i+1] = rest[i*2]<<4 | rest[i*2+1]
	}
	return buf
}

// FromCompact decodes a hex-prefix encoded byte slice back into a Path,
// appending the terminator nibble iff the leaf flag was set.
func FromCompact(buf []byte) Path {
	if len(buf) == 0 {
		return Path{}
	}
	header := buf[0]
	leaf := header&0x20 != 0
	odd := header&0x10 != 0

	var nibs []byte
	if odd {
		nibs = append(nibs, header&0x0f)
	}
	for _, b := range buf[1:] {
		nibs = append(nibs, b>>4, b&0x0f)
	}
	if leaf {
		nibs = append(nibs, terminator)
	}
	return Path(nibs)
}
