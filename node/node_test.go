package node_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cita-io/gmpt/codec"
	"github.com/cita-io/gmpt/nibbles"
	"github.com/cita-io/gmpt/node"
)

func TestEncodeDecodeLeaf(t *testing.T) {
	leaf := &node.Leaf{Key: nibbles.FromBytes([]byte("k"), true), Value: []byte("v")}
	raw := node.EncodeRaw(codec.RLP, leaf, nil)

	decoded, err := node.Decode(codec.RLP, raw)
	require.NoError(t, err)
	got, ok := decoded.(*node.Leaf)
	require.True(t, ok)
	assert.Equal(t, leaf.Key, got.Key)
	assert.Equal(t, leaf.Value, got.Value)
}

func TestEncodeDecodeExtensionWithInlineChild(t *testing.T) {
	leaf := &node.Leaf{Key: nibbles.Path{9, 16}, Value: []byte("z")}
	ext := &node.Extension{Prefix: nibbles.Path{1, 2}, Child: leaf}

	raw := node.EncodeRaw(codec.RLP, ext, func(child node.Node) []byte {
		return node.EncodeRaw(codec.RLP, child, nil)
	})

	decoded, err := node.Decode(codec.RLP, raw)
	require.NoError(t, err)
	got, ok := decoded.(*node.Extension)
	require.True(t, ok)
	assert.Equal(t, ext.Prefix, got.Prefix)
	child, ok := got.Child.(*node.Leaf)
	require.True(t, ok)
	assert.Equal(t, leaf.Value, child.Value)
}

func TestEncodeDecodeExtensionWithHashedChild(t *testing.T) {
	bigValue := make([]byte, 64)
	for i := range bigValue {
		bigValue[i] = byte(i)
	}
	leaf := &node.Leaf{Key: nibbles.Path{9, 16}, Value: bigValue}
	leafRaw := node.EncodeRaw(codec.RLP, leaf, nil)
	require.GreaterOrEqual(t, len(leafRaw), codec.HashLength)
	leafHash := codec.RLP.HashOf(leafRaw)

	ext := &node.Extension{Prefix: nibbles.Path{1, 2}, Child: node.HashNode(leafHash)}
	raw := node.EncodeRaw(codec.RLP, ext, func(child node.Node) []byte {
		hn := child.(node.HashNode)
		return []byte(hn)
	})

	decoded, err := node.Decode(codec.RLP, raw)
	require.NoError(t, err)
	got, ok := decoded.(*node.Extension)
	require.True(t, ok)
	hn, ok := got.Child.(node.HashNode)
	require.True(t, ok)
	assert.Equal(t, leafHash, []byte(hn))
}

func TestEncodeDecodeBranch(t *testing.T) {
	branch := &node.Branch{Value: []byte("root-value")}
	branch.Children[5] = &node.Leaf{Key: nibbles.Path{7, 16}, Value: []byte("five")}

	raw := node.EncodeRaw(codec.RLP, branch, func(child node.Node) []byte {
		if child == nil {
			return nil
		}
		return node.EncodeRaw(codec.RLP, child, nil)
	})

	decoded, err := node.Decode(codec.RLP, raw)
	require.NoError(t, err)
	got, ok := decoded.(*node.Branch)
	require.True(t, ok)
	assert.Equal(t, []byte("root-value"), got.Value)
	for i := 0; i < 16; i++ {
		if i == 5 {
			leaf, ok := got.Children[i].(*node.Leaf)
			require.True(t, ok)
			assert.Equal(t, []byte("five"), leaf.Value)
			continue
		}
		assert.Nil(t, got.Children[i])
	}
}

func TestDecodeEmpty(t *testing.T) {
	decoded, err := node.Decode(codec.RLP, codec.RLP.EncodeEmpty())
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestBranchOccupied(t *testing.T) {
	b := &node.Branch{}
	b.Children[2] = &node.Leaf{}
	b.Children[9] = &node.Leaf{}
	idxs, hasValue := b.Occupied()
	assert.Equal(t, []int{2, 9}, idxs)
	assert.False(t, hasValue)

	b.Value = []byte("x")
	_, hasValue = b.Occupied()
	assert.True(t, hasValue)
}
