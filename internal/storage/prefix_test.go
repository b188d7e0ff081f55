package storage

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrefixDB_Suite(t *testing.T) {
	testDB(t, NewPrefixDB(NewMemory(), []byte("ns1/")))
}

func TestPrefixDB_Isolation(t *testing.T) {
	inner := NewMemory()
	dbA := NewPrefixDB(inner, []byte("a/"))
	dbB := NewPrefixDB(inner, []byte("b/"))

	require.NoError(t, dbA.Put([]byte("key"), []byte("fromA")))
	require.NoError(t, dbB.Put([]byte("key"), []byte("fromB")))

	got, err := dbA.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, "fromA", string(got))

	got, err = dbB.Get([]byte("key"))
	require.NoError(t, err)
	assert.Equal(t, "fromB", string(got))

	ok, err := dbA.Has([]byte("b/key"))
	require.NoError(t, err)
	assert.False(t, ok, "A should not see B's raw key")

	raw, err := inner.Get([]byte("a/key"))
	require.NoError(t, err)
	assert.Equal(t, "fromA", string(raw))
}

func TestPrefixDB_ForEachStripsPrefix(t *testing.T) {
	db := NewPrefixDB(NewMemory(), []byte("eth/mainnet/"))
	require.NoError(t, db.Put([]byte("tx/k1"), []byte("v1")))
	require.NoError(t, db.Put([]byte("tx/k2"), []byte("v2")))
	require.NoError(t, db.Put([]byte("seed/k3"), []byte("v3")))

	var keys []string
	require.NoError(t, db.ForEach([]byte("tx/"), func(key, value []byte) error {
		keys = append(keys, string(key))
		return nil
	}))
	assert.Equal(t, []string{"tx/k1", "tx/k2"}, keys)
}

func TestPrefixDB_DeleteAll(t *testing.T) {
	inner := NewMemory()
	dbA := NewPrefixDB(inner, []byte("a/"))
	dbB := NewPrefixDB(inner, []byte("b/"))

	for i := 0; i < 3; i++ {
		require.NoError(t, dbA.Put([]byte(fmt.Sprintf("k%d", i)), []byte("v")))
	}
	require.NoError(t, dbB.Put([]byte("k1"), []byte("other")))

	require.NoError(t, dbA.DeleteAll())

	for i := 0; i < 3; i++ {
		ok, err := dbA.Has([]byte(fmt.Sprintf("k%d", i)))
		require.NoError(t, err)
		assert.False(t, ok)
	}
	got, err := dbB.Get([]byte("k1"))
	require.NoError(t, err)
	assert.Equal(t, "other", string(got))

	assert.NoError(t, NewPrefixDB(inner, []byte("empty/")).DeleteAll())
}

// plainDB hides the Batcher implementation of its inner DB.
type plainDB struct{ DB }

func TestPrefixDB_SequentialBatch(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(plainDB{inner}, []byte("p/"))
	_, atomic := db.NewBatch().(*prefixBatch)
	assert.False(t, atomic)
	testBatch(t, db, db)

	_, err := inner.Get([]byte("p/batch/0"))
	assert.NoError(t, err)
}

func TestPrefixDB_CloseIsNoop(t *testing.T) {
	inner := NewMemory()
	db := NewPrefixDB(inner, []byte("x/"))
	require.NoError(t, db.Put([]byte("key"), []byte("val")))
	require.NoError(t, db.Close())

	got, err := inner.Get([]byte("x/key"))
	require.NoError(t, err)
	assert.Equal(t, "val", string(got))
}
