package nibbles

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromBytesRoundTrip(t *testing.T) {
	key := []byte{0x12, 0xab}
	p := FromBytes(key, true)
	assert.True(t, p.IsLeaf())
	assert.Equal(t, Path{1, 2, 10, 11, 16}, p)
	assert.Equal(t, key, p.Bytes())
}

func TestFromBytesNoTerminator(t *testing.T) {
	key := []byte{0xff}
	p := FromBytes(key, false)
	assert.False(t, p.IsLeaf())
	assert.Equal(t, Path{15, 15}, p)
}

func TestCommonPrefix(t *testing.T) {
	a := Path{1, 2, 3, 16}
	b := Path{1, 2, 9, 16}
	assert.Equal(t, 2, a.CommonPrefix(b))
	assert.Equal(t, a.Len(), a.CommonPrefix(a))
}

func TestJoinPreservesTrailingTerminator(t *testing.T) {
	prefix := Path{1, 2}
	rest := Path{3, 4, 16}
	joined := Join(prefix, rest)
	assert.Equal(t, Path{1, 2, 3, 4, 16}, joined)
	assert.True(t, joined.IsLeaf())

	nonLeaf := Join(prefix, Path{5, 6})
	assert.False(t, nonLeaf.IsLeaf())
}

func TestCompactRoundTrip(t *testing.T) {
	cases := []Path{
		{1, 2, 3, 4, 16},
		{1, 2, 3, 16},
		{1, 2, 3, 4},
		{1, 2, 3},
		{16},
	}
	for _, p := range cases {
		enc := p.Compact()
		dec := FromCompact(enc)
		assert.Equal(t, p, dec, "compact round trip for %v", p)
	}
}

func TestCompactHeaderFlags(t *testing.T) {
	// Even-length extension: header byte 0x00.
	assert.Equal(t, byte(0x00), Path{1, 2, 3, 4}.Compact()[0])
	// Odd-length extension: header nibble 1, low nibble carries data.
	assert.Equal(t, byte(0x11), Path{1, 2, 3}.Compact()[0])
	// Even-length leaf: header nibble 2.
	assert.Equal(t, byte(0x20), Path{1, 2, 3, 4, 16}.Compact()[0])
	// Odd-length leaf: header nibble 3, low nibble carries data.
	assert.Equal(t, byte(0x31), Path{1, 2, 3, 16}.Compact()[0])
}

func TestTerminal(t *testing.T) {
	term := Terminal()
	assert.True(t, term.IsLeaf())
	assert.Equal(t, 1, term.Len())
}

func TestEqual(t *testing.T) {
	assert.True(t, Path{1, 2, 16}.Equal(Path{1, 2, 16}))
	assert.False(t, Path{1, 2, 16}.Equal(Path{1, 2}))
}
