package leveldb_test

import (
	"path/filepath"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"github.com/cita-io/gmpt/db/leveldb"
)

func TestOpenInsertGetRemove(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gmpt-leveldb")
	store, err := leveldb.Open(dir)
	require.NoError(t, err)
	defer store.Close()

	h := common.Hash{42}
	require.NoError(t, store.InsertBatch(map[common.Hash][]byte{h: []byte("payload")}))

	v, ok, err := store.Get(h)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("payload"), v)

	require.NoError(t, store.RemoveBatch([]common.Hash{h}))
	_, ok, err = store.Get(h)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReopenPersists(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gmpt-leveldb")
	store, err := leveldb.Open(dir)
	require.NoError(t, err)
	h := common.Hash{7}
	require.NoError(t, store.InsertBatch(map[common.Hash][]byte{h: []byte("durable")}))
	require.NoError(t, store.Close())

	reopened, err := leveldb.Open(dir)
	require.NoError(t, err)
	defer reopened.Close()
	v, ok, err := reopened.Get(h)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("durable"), v)
}
