// Package leveldb is a persistent db.Database backed by
// github.com/syndtr/goleveldb, adapted from the teacher's accdb to the
// trie's batched insert/remove contract.
package leveldb

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// DB wraps a single goleveldb instance.
type DB struct {
	ldb *leveldb.DB
}

// Open opens (creating if absent) the leveldb store at path.
func Open(path string) (*DB, error) {
	ldb, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, err
	}
	return &DB{ldb: ldb}, nil
}

// Close releases the underlying leveldb handle.
func (db *DB) Close() error {
	return db.ldb.Close()
}

func (db *DB) Get(hash common.Hash) ([]byte, bool, error) {
	v, err := db.ldb.Get(hash[:], nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, false, nil
		}
		return nil, false, err
	}
	return v, true, nil
}

func (db *DB) InsertBatch(entries map[common.Hash][]byte) error {
	if len(entries) == 0 {
		return nil
	}
	batch := new(leveldb.Batch)
	for h, v := range entries {
		exists, err := db.ldb.Has(h[:], nil)
		if err != nil {
			return err
		}
		if exists {
			continue
		}
		batch.Put(h[:], v)
	}
	return db.ldb.Write(batch, nil)
}

func (db *DB) RemoveBatch(keys []common.Hash) error {
	if len(keys) == 0 {
		return nil
	}
	batch := new(leveldb.Batch)
	for _, h := range keys {
		batch.Delete(h[:])
	}
	return db.ldb.Write(batch, nil)
}
