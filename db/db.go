// Package db defines the batched key-value contract the trie commits
// through (spec §4.3) and provides two implementations: an in-process
// memorydb for tests and a goleveldb-backed persistent store.
package db

import "github.com/ethereum/go-ethereum/common"

// Database is the storage contract a Trie is built on. Keys are node
// hashes; values are the node's raw wire encoding. Implementations need
// not support concurrent writers without external synchronization, but
// MUST support concurrent reads.
type Database interface {
	// Get returns the raw node bytes stored under hash, or ok=false if
	// absent.
	Get(hash common.Hash) (value []byte, ok bool, err error)

	// InsertBatch writes every (hash, value) pair atomically. A hash
	// already present is left untouched (node bytes are content
	// addressed, so a rewrite would be redundant, never conflicting).
	InsertBatch(entries map[common.Hash][]byte) error

	// RemoveBatch deletes every hash in keys. A missing key is not an
	// error — the stale-node reclamation pass (§4.6) may race a reader
	// that already dropped its only reference.
	RemoveBatch(keys []common.Hash) error
}
