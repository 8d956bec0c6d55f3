// Package memorydb is an in-process, map-backed db.Database, adapted
// from the teacher's accdb/memorydb for the trie's batched contract.
package memorydb

import (
	"sync"

	"github.com/ethereum/go-ethereum/common"
)

// DB is a memory-backed key-value store guarded by a single RWMutex,
// matching the teacher's locking convention for its accdb.
type DB struct {
	mu   sync.RWMutex
	data map[common.Hash][]byte
}

// New returns an empty DB.
func New() *DB {
	return &DB{data: make(map[common.Hash][]byte)}
}

func (db *DB) Get(hash common.Hash) ([]byte, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	v, ok := db.data[hash]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (db *DB) InsertBatch(entries map[common.Hash][]byte) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for h, v := range entries {
		if _, exists := db.data[h]; exists {
			continue
		}
		cp := make([]byte, len(v))
		copy(cp, v)
		db.data[h] = cp
	}
	return nil
}

func (db *DB) RemoveBatch(keys []common.Hash) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	for _, h := range keys {
		delete(db.data, h)
	}
	return nil
}

// Len reports the number of entries currently stored, for tests.
func (db *DB) Len() int {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return len(db.data)
}
