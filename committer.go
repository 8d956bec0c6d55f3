package gmpt

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/log"

	"github.com/cita-io/gmpt/codec"
	"github.com/cita-io/gmpt/node"
)

// committer drives one commit pass (spec §4.6). It walks the live
// in-memory node tree, re-encodes every node that was mutated or newly
// inserted since the last commit, collects the resulting (hash, bytes)
// pairs for a single batched write, and collapses each freshly written
// subtree back into a node.HashNode — generalizing the teacher's
// trie_committer.go to the spec's hash-set reconciliation model rather
// than its path-keyed NodeSet.
type committer struct {
	codec     codec.Codec
	writes    map[common.Hash][]byte
	generated map[common.Hash]struct{}
}

func newCommitter(c codec.Codec) *committer {
	return &committer{
		codec:     c,
		writes:    make(map[common.Hash][]byte),
		generated: make(map[common.Hash]struct{}),
	}
}

// commit returns the collapsed replacement for n (itself if n is nil or
// already a HashNode) together with n's wire representation as seen by
// its parent: a HashLength-byte hash if n's encoding was long enough to
// be content-addressed, or the full raw encoding if it stayed inlined.
func (c *committer) commit(n node.Node) (node.Node, []byte, error) {
	switch v := n.(type) {
	case nil:
		return nil, nil, nil
	case node.HashNode:
		return v, []byte(v), nil
	case *node.Leaf:
		raw := node.EncodeRaw(c.codec, v, nil)
		return c.settle(raw, v)
	case *node.Extension:
		newChild, childRepr, err := c.commit(v.Child)
		if err != nil {
			return nil, nil, err
		}
		v.Child = newChild
		raw := node.EncodeRaw(c.codec, v, func(node.Node) []byte { return childRepr })
		return c.settle(raw, v)
	case *node.Branch:
		reprs := make([][]byte, 16)
		for i, ch := range v.Children {
			newChild, repr, err := c.commit(ch)
			if err != nil {
				return nil, nil, err
			}
			v.Children[i] = newChild
			reprs[i] = repr
		}
		i := 0
		raw := node.EncodeRaw(c.codec, v, func(node.Node) []byte {
			r := reprs[i]
			i++
			return r
		})
		return c.settle(raw, v)
	default:
		return nil, nil, fmt.Errorf("gmpt: commit: unexpected node type %T", n)
	}
}

// settle decides whether raw (the just-produced encoding of original)
// is long enough to be content-addressed: if so it is hashed, staged
// for the batched write, and recorded as generated; otherwise original
// stays inlined in its parent, unchanged.
func (c *committer) settle(raw []byte, original node.Node) (node.Node, []byte, error) {
	if len(raw) < codec.HashLength {
		return original, raw, nil
	}
	hash := c.codec.HashOf(raw)
	h := common.BytesToHash(hash)
	c.writes[h] = raw
	c.generated[h] = struct{}{}
	return node.HashNode(hash), hash, nil
}

// Commit walks t's in-memory tree, writes every freshly generated node
// in one batch, reclaims nodes superseded since the last commit
// (passing minus generated), and returns the new root hash.
func (t *Trie) Commit() (common.Hash, error) {
	c := newCommitter(t.codec)
	newRoot, repr, err := c.commit(t.root)
	if err != nil {
		return common.Hash{}, err
	}

	var rootHash common.Hash
	switch rv := newRoot.(type) {
	case node.HashNode:
		rootHash = common.BytesToHash([]byte(rv))
	case nil:
		raw := t.codec.EncodeEmpty()
		rootHash = common.BytesToHash(t.codec.HashOf(raw))
		c.writes[rootHash] = raw
		c.generated[rootHash] = struct{}{}
		newRoot = node.HashNode(rootHash[:])
	default:
		// Root stayed inlined (a trie small enough to fit in under
		// HashLength bytes) — it is still addressed by hash so
		// FromRoot can round-trip it like any other root.
		rootHash = common.BytesToHash(t.codec.HashOf(repr))
		c.writes[rootHash] = repr
		c.generated[rootHash] = struct{}{}
		newRoot = node.HashNode(rootHash[:])
	}

	if err := t.db.InsertBatch(c.writes); err != nil {
		return common.Hash{}, err
	}

	stale := make([]common.Hash, 0, len(t.passing))
	for h := range t.passing {
		if _, kept := c.generated[h]; !kept {
			stale = append(stale, h)
		}
	}
	if len(stale) > 0 {
		log.Debug("gmpt: reclaiming superseded nodes", "count", len(stale))
		if err := t.db.RemoveBatch(stale); err != nil {
			return common.Hash{}, err
		}
	}

	t.root = newRoot
	t.passing = make(map[common.Hash]struct{})
	return rootHash, nil
}
