// Package gmpt implements a Modified Merkle Patricia Trie: an
// authenticated, ordered key-value structure whose root hash commits to
// every stored mapping, following the node algebra and commit/proof
// model of the original cita-trie design, reworked in the shape of
// go-ethereum's trie package.
package gmpt

import (
	"bytes"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/cita-io/gmpt/codec"
	"github.com/cita-io/gmpt/db"
	"github.com/cita-io/gmpt/nibbles"
	"github.com/cita-io/gmpt/node"
)

// Trie is a Modified Merkle Patricia Trie over an arbitrary db.Database
// and codec.Codec. The zero value is not usable; construct one with New
// or FromRoot.
type Trie struct {
	db    db.Database
	codec codec.Codec

	root node.Node

	// passing accumulates the hashes of every node resolved along a
	// mutation path since the last Commit — the nodes whose bytes are
	// about to be superseded. Commit reclaims passing minus the hashes
	// it freshly generates, per spec §4.6.
	passing map[common.Hash]struct{}
}

// New returns an empty trie backed by database and codec.
func New(database db.Database, c codec.Codec) *Trie {
	return &Trie{
		db:      database,
		codec:   c,
		passing: make(map[common.Hash]struct{}),
	}
}

// FromRoot reopens a previously committed trie by its root hash. The
// zero hash denotes the canonical empty trie. Any other hash is read
// eagerly so a caller learns immediately, rather than on first Get, that
// root does not name a node present in database — in which case
// ErrInvalidStateRoot is returned.
func FromRoot(database db.Database, c codec.Codec, root common.Hash) (*Trie, error) {
	t := New(database, c)
	if root == (common.Hash{}) {
		return t, nil
	}
	if _, found, err := database.Get(root); err != nil {
		return nil, err
	} else if !found {
		return nil, ErrInvalidStateRoot
	}
	t.root = node.HashNode(root[:])
	return t, nil
}

// resolveRaw returns both the decoded node at n's position and the raw
// wire bytes that encode it: read straight from the database for a
// node.HashNode, or freshly re-derived for an in-memory, not-yet-
// committed node. prefix is the nibble path consumed so far, carried
// only for MissingNodeError/DecodeError diagnostics.
func (t *Trie) resolveRaw(n node.Node, prefix nibbles.Path) ([]byte, node.Node, error) {
	switch v := n.(type) {
	case nil:
		return t.codec.EncodeEmpty(), nil, nil
	case node.HashNode:
		hash := common.BytesToHash(v)
		raw, found, err := t.db.Get(hash)
		if err != nil {
			return nil, nil, err
		}
		if !found {
			return nil, nil, &MissingNodeError{NodeHash: hash, Path: append([]byte(nil), prefix...)}
		}
		decoded, err := node.Decode(t.codec, raw)
		if err != nil {
			return nil, nil, &DecodeError{NodeHash: hash, Err: err}
		}
		return raw, decoded, nil
	default:
		raw := node.EncodeRaw(t.codec, n, func(child node.Node) []byte {
			return encodeForHash(t.codec, child)
		})
		return raw, n, nil
	}
}

// resolve is resolveRaw without the raw bytes, used by every mutating
// walk (insert/delete) that only needs the decoded shape.
func (t *Trie) resolve(n node.Node, prefix nibbles.Path) (node.Node, error) {
	_, decoded, err := t.resolveRaw(n, prefix)
	return decoded, err
}

// recordSuperseded notes that old — if it is a persisted node.HashNode —
// is about to be replaced by different content, so its bytes become a
// reclamation candidate at the next Commit.
func (t *Trie) recordSuperseded(old node.Node) {
	if hn, ok := old.(node.HashNode); ok {
		t.passing[common.BytesToHash(hn)] = struct{}{}
	}
}

// encodeForHash returns n's settled wire representation — a HashLength
// hash if its encoding is long enough to be content-addressed, or its
// full raw encoding otherwise — without writing anything to storage.
// It mirrors committer.settle's rule so Hash and Commit agree on what
// any given subtree would hash to.
func encodeForHash(c codec.Codec, n node.Node) []byte {
	switch v := n.(type) {
	case nil:
		return nil
	case node.HashNode:
		return []byte(v)
	default:
		raw := node.EncodeRaw(c, v, func(child node.Node) []byte {
			return encodeForHash(c, child)
		})
		if len(raw) < codec.HashLength {
			return raw
		}
		return c.HashOf(raw)
	}
}

// String renders the trie's in-memory root for debugging, following the
// teacher's fstring-based pretty printer.
func (t *Trie) String() string {
	return node.String(t.root)
}

// Hash returns the root hash of the trie's current state, including any
// uncommitted mutations, without writing anything to storage.
func (t *Trie) Hash() common.Hash {
	if hn, ok := t.root.(node.HashNode); ok {
		return common.BytesToHash([]byte(hn))
	}
	raw := node.EncodeRaw(t.codec, t.root, func(child node.Node) []byte {
		return encodeForHash(t.codec, child)
	})
	return common.BytesToHash(t.codec.HashOf(raw))
}

// Get looks up key, returning its value and true if present.
func (t *Trie) Get(key []byte) ([]byte, bool, error) {
	path := nibbles.FromBytes(key, true)
	return t.get(t.root, path, nibbles.Path{})
}

// Contains reports whether key is present, without exposing its value.
func (t *Trie) Contains(key []byte) (bool, error) {
	_, found, err := t.Get(key)
	return found, err
}

func (t *Trie) get(n node.Node, key, prefix nibbles.Path) ([]byte, bool, error) {
	rn, err := t.resolve(n, prefix)
	if err != nil {
		return nil, false, err
	}
	switch v := rn.(type) {
	case nil:
		return nil, false, nil
	case *node.Leaf:
		if key.Equal(v.Key) {
			return v.Value, true, nil
		}
		return nil, false, nil
	case *node.Extension:
		if key.Len() < v.Prefix.Len() || !key.Slice(0, v.Prefix.Len()).Equal(v.Prefix) {
			return nil, false, nil
		}
		return t.get(v.Child, key.Rest(v.Prefix.Len()), nibbles.Join(prefix, v.Prefix))
	case *node.Branch:
		if key.Len() == 1 && key.IsLeaf() {
			if len(v.Value) == 0 {
				return nil, false, nil
			}
			return v.Value, true, nil
		}
		idx := key.At(0)
		return t.get(v.Children[idx], key.Rest(1), append(append(nibbles.Path{}, prefix...), idx))
	default:
		return nil, false, fmt.Errorf("gmpt: get: unexpected node type %T", rn)
	}
}

// Insert maps key to value, replacing any existing value. Inserting a
// zero-length value is equivalent to Delete, matching the convention
// that a trie never stores empty-byte values (there would be no way to
// distinguish "present but empty" from "absent" on the wire, per the
// branch value slot's own empty-means-absent rule).
func (t *Trie) Insert(key, value []byte) error {
	if len(value) == 0 {
		_, err := t.Delete(key)
		return err
	}
	path := nibbles.FromBytes(key, true)
	newRoot, err := t.insert(t.root, nibbles.Path{}, path, value)
	if err != nil {
		return err
	}
	t.root = newRoot
	return nil
}

func (t *Trie) insert(n node.Node, prefix, key nibbles.Path, value []byte) (node.Node, error) {
	rn, err := t.resolve(n, prefix)
	if err != nil {
		return nil, err
	}
	switch v := rn.(type) {
	case nil:
		return &node.Leaf{Key: append(nibbles.Path(nil), key...), Value: value}, nil
	case *node.Leaf:
		out, err := insertLeaf(v, key, value)
		if err != nil {
			return nil, err
		}
		if out != node.Node(v) {
			t.recordSuperseded(n)
		}
		return out, nil
	case *node.Extension:
		out, err := t.insertExtension(v, prefix, key, value)
		if err != nil {
			return nil, err
		}
		t.recordSuperseded(n)
		return out, nil
	case *node.Branch:
		out, err := t.insertBranch(v, prefix, key, value)
		if err != nil {
			return nil, err
		}
		t.recordSuperseded(n)
		return out, nil
	default:
		return nil, fmt.Errorf("gmpt: insert: unexpected node type %T", rn)
	}
}

// placeInBranch drops a (suffix, value) pair into branch: at its value
// slot if suffix is nothing but the terminator, else as a fresh leaf
// hanging off the nibble suffix starts with.
func placeInBranch(branch *node.Branch, suffix nibbles.Path, value []byte) {
	if suffix.Len() == 1 && suffix.IsLeaf() {
		branch.Value = value
		return
	}
	idx := suffix.At(0)
	branch.Children[idx] = &node.Leaf{Key: suffix.Rest(1), Value: value}
}

func insertLeaf(v *node.Leaf, key nibbles.Path, value []byte) (node.Node, error) {
	match := key.CommonPrefix(v.Key)
	if match == key.Len() && match == v.Key.Len() {
		if bytes.Equal(v.Value, value) {
			return v, nil
		}
		return &node.Leaf{Key: v.Key, Value: value}, nil
	}
	branch := &node.Branch{}
	placeInBranch(branch, v.Key.Rest(match), v.Value)
	placeInBranch(branch, key.Rest(match), value)
	if match == 0 {
		return branch, nil
	}
	return &node.Extension{Prefix: key.Slice(0, match), Child: branch}, nil
}

func (t *Trie) insertExtension(v *node.Extension, prefix, key nibbles.Path, value []byte) (node.Node, error) {
	match := key.CommonPrefix(v.Prefix)
	if match == v.Prefix.Len() {
		childPrefix := nibbles.Join(prefix, v.Prefix)
		newChild, err := t.insert(v.Child, childPrefix, key.Rest(match), value)
		if err != nil {
			return nil, err
		}
		return &node.Extension{Prefix: v.Prefix, Child: newChild}, nil
	}
	branch := &node.Branch{}
	extIdx := v.Prefix.At(match)
	extRemainder := v.Prefix.Rest(match + 1)
	if extRemainder.Len() == 0 {
		branch.Children[extIdx] = v.Child
	} else {
		branch.Children[extIdx] = &node.Extension{Prefix: extRemainder, Child: v.Child}
	}
	placeInBranch(branch, key.Rest(match), value)
	if match == 0 {
		return branch, nil
	}
	return &node.Extension{Prefix: key.Slice(0, match), Child: branch}, nil
}

func (t *Trie) insertBranch(v *node.Branch, prefix, key nibbles.Path, value []byte) (node.Node, error) {
	if key.Len() == 1 && key.IsLeaf() {
		nb := v.Copy()
		nb.Value = value
		return nb, nil
	}
	idx := key.At(0)
	childPrefix := append(append(nibbles.Path{}, prefix...), idx)
	newChild, err := t.insert(v.Children[idx], childPrefix, key.Rest(1), value)
	if err != nil {
		return nil, err
	}
	nb := v.Copy()
	nb.Children[idx] = newChild
	return nb, nil
}

// Delete removes key, reporting whether it was present. Deleting an
// absent key is a no-op that returns false.
func (t *Trie) Delete(key []byte) (bool, error) {
	path := nibbles.FromBytes(key, true)
	newRoot, removed, err := t.delete(t.root, nibbles.Path{}, path)
	if err != nil {
		return false, err
	}
	t.root = newRoot
	return removed, nil
}

func (t *Trie) delete(n node.Node, prefix, key nibbles.Path) (node.Node, bool, error) {
	rn, err := t.resolve(n, prefix)
	if err != nil {
		return nil, false, err
	}
	switch v := rn.(type) {
	case nil:
		return n, false, nil
	case *node.Leaf:
		if !key.Equal(v.Key) {
			return n, false, nil
		}
		t.recordSuperseded(n)
		return nil, true, nil
	case *node.Extension:
		if key.Len() < v.Prefix.Len() || !key.Slice(0, v.Prefix.Len()).Equal(v.Prefix) {
			return n, false, nil
		}
		childPrefix := nibbles.Join(prefix, v.Prefix)
		newChild, removed, err := t.delete(v.Child, childPrefix, key.Rest(v.Prefix.Len()))
		if err != nil || !removed {
			return n, removed, err
		}
		out, err := t.degenerateExtension(v.Prefix, newChild)
		if err != nil {
			return nil, false, err
		}
		t.recordSuperseded(n)
		return out, true, nil
	case *node.Branch:
		if key.Len() == 1 && key.IsLeaf() {
			if len(v.Value) == 0 {
				return n, false, nil
			}
			nb := v.Copy()
			nb.Value = nil
			out, err := t.degenerateBranch(nb, prefix)
			if err != nil {
				return nil, false, err
			}
			t.recordSuperseded(n)
			return out, true, nil
		}
		idx := key.At(0)
		childPrefix := append(append(nibbles.Path{}, prefix...), idx)
		newChild, removed, err := t.delete(v.Children[idx], childPrefix, key.Rest(1))
		if err != nil || !removed {
			return n, removed, err
		}
		nb := v.Copy()
		nb.Children[idx] = newChild
		out, err := t.degenerateBranch(nb, prefix)
		if err != nil {
			return nil, false, err
		}
		t.recordSuperseded(n)
		return out, true, nil
	default:
		return nil, false, fmt.Errorf("gmpt: delete: unexpected node type %T", rn)
	}
}

// degenerateExtension restores invariant 1 after a delete shrinks an
// extension's child: an extension can never point at Empty, another
// Extension, or (implicitly, by never being constructed that way) a
// childless Branch.
func (t *Trie) degenerateExtension(prefix nibbles.Path, child node.Node) (node.Node, error) {
	switch c := child.(type) {
	case nil:
		return nil, nil
	case *node.Leaf:
		return &node.Leaf{Key: nibbles.Join(prefix, c.Key), Value: c.Value}, nil
	case *node.Extension:
		return &node.Extension{Prefix: nibbles.Join(prefix, c.Prefix), Child: c.Child}, nil
	default:
		return &node.Extension{Prefix: prefix, Child: child}, nil
	}
}

// degenerateBranch restores invariant 2 after a delete shrinks a
// branch's occupancy: a branch with nothing left becomes Empty, a
// branch with only a value becomes a terminal Leaf, and a branch with
// exactly one remaining child and no value merges that child's nibble
// into an Extension (or Leaf, if the child was itself a leaf).
func (t *Trie) degenerateBranch(nb *node.Branch, prefix nibbles.Path) (node.Node, error) {
	idxs, hasValue := nb.Occupied()
	switch {
	case len(idxs) == 0 && !hasValue:
		return nil, nil
	case len(idxs) == 0 && hasValue:
		return &node.Leaf{Key: nibbles.Terminal(), Value: nb.Value}, nil
	case len(idxs) == 1 && !hasValue:
		idx := idxs[0]
		childPrefix := append(append(nibbles.Path{}, prefix...), byte(idx))
		child, err := t.resolve(nb.Children[idx], childPrefix)
		if err != nil {
			return nil, err
		}
		t.recordSuperseded(nb.Children[idx])
		lead := nibbles.Path{byte(idx)}
		switch c := child.(type) {
		case *node.Leaf:
			return &node.Leaf{Key: nibbles.Join(lead, c.Key), Value: c.Value}, nil
		case *node.Extension:
			return &node.Extension{Prefix: nibbles.Join(lead, c.Prefix), Child: c.Child}, nil
		case *node.Branch:
			return &node.Extension{Prefix: lead, Child: c}, nil
		default:
			return nil, fmt.Errorf("gmpt: degenerate: unexpected child type %T", c)
		}
	default:
		return nb, nil
	}
}

// Prove builds a Merkle proof for key: the raw wire bytes, as read from
// the database, of every hash-referenced node on the path from the root
// to key's position, root first, regardless of whether key is ultimately
// present (an exclusion proof terminates at the point the key's absence
// becomes apparent). Nodes inlined in a parent travel inside that
// parent's bytes; in-memory nodes not yet committed are not included.
// VerifyProof checks the result against a claimed root hash.
func (t *Trie) Prove(key []byte) ([][]byte, error) {
	path := nibbles.FromBytes(key, true)
	prefix := nibbles.Path{}
	var proof [][]byte
	n := t.root
	for {
		switch v := n.(type) {
		case node.HashNode:
			hash := common.BytesToHash(v)
			raw, found, err := t.db.Get(hash)
			if err != nil {
				return nil, err
			}
			if !found {
				return nil, &MissingNodeError{NodeHash: hash, Path: append([]byte(nil), prefix...)}
			}
			decoded, err := node.Decode(t.codec, raw)
			if err != nil {
				return nil, &DecodeError{NodeHash: hash, Err: err}
			}
			proof = append(proof, raw)
			n = decoded
		case nil:
			return proof, nil
		case *node.Leaf:
			return proof, nil
		case *node.Extension:
			if path.Len() < v.Prefix.Len() || !path.Slice(0, v.Prefix.Len()).Equal(v.Prefix) {
				return proof, nil
			}
			prefix = nibbles.Join(prefix, v.Prefix)
			path = path.Rest(v.Prefix.Len())
			n = v.Child
		case *node.Branch:
			if path.Len() == 1 && path.IsLeaf() {
				return proof, nil
			}
			idx := path.At(0)
			prefix = append(append(nibbles.Path{}, prefix...), idx)
			path = path.Rest(1)
			n = v.Children[idx]
		default:
			return nil, fmt.Errorf("gmpt: prove: unexpected node type %T", v)
		}
	}
}

// VerifyProof checks proof against root for key, following it down
// exactly as Prove produced it. It returns the proven value and true
// for an inclusion proof, or false (with no error) for a valid
// exclusion proof. ErrInvalidProof is returned when proof does not
// chain consistently from root to a conclusive answer.
func VerifyProof(c codec.Codec, root common.Hash, key []byte, proof [][]byte) ([]byte, bool, error) {
	if root == (common.Hash{}) {
		if len(proof) != 0 {
			return nil, false, ErrInvalidProof
		}
		return nil, false, nil
	}
	path := nibbles.FromBytes(key, true)
	var n node.Node = node.HashNode(root[:])
	i := 0
	for {
		switch v := n.(type) {
		case node.HashNode:
			if i >= len(proof) {
				return nil, false, ErrInvalidProof
			}
			raw := proof[i]
			i++
			hash := c.HashOf(raw)
			if common.BytesToHash(hash) != common.BytesToHash([]byte(v)) {
				return nil, false, ErrInvalidProof
			}
			decoded, err := node.Decode(c, raw)
			if err != nil {
				return nil, false, ErrInvalidProof
			}
			n = decoded
		case nil:
			return nil, false, nil
		case *node.Leaf:
			if !path.Equal(v.Key) {
				return nil, false, nil
			}
			return v.Value, true, nil
		case *node.Extension:
			if path.Len() < v.Prefix.Len() || !path.Slice(0, v.Prefix.Len()).Equal(v.Prefix) {
				return nil, false, nil
			}
			path = path.Rest(v.Prefix.Len())
			n = v.Child
		case *node.Branch:
			if path.Len() == 1 && path.IsLeaf() {
				if len(v.Value) == 0 {
					return nil, false, nil
				}
				return v.Value, true, nil
			}
			idx := path.At(0)
			path = path.Rest(1)
			n = v.Children[idx]
		default:
			return nil, false, ErrInvalidProof
		}
	}
}
