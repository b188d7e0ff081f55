package storage

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testDB runs the shared test suite against a DB implementation.
func testDB(t *testing.T, db DB) {
	t.Helper()

	t.Run("PutAndGet", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("key1"), []byte("value1")))
		val, err := db.Get([]byte("key1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("value1"), val)
	})

	t.Run("GetNonexistent", func(t *testing.T) {
		_, err := db.Get([]byte("nonexistent"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("Has", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("exists"), []byte("yes")))

		ok, err := db.Has([]byte("exists"))
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = db.Has([]byte("missing"))
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("ow"), []byte("first")))
		require.NoError(t, db.Put([]byte("ow"), []byte("second")))
		val, err := db.Get([]byte("ow"))
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), val)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("del"), []byte("value")))
		require.NoError(t, db.Delete([]byte("del")))

		ok, err := db.Has([]byte("del"))
		require.NoError(t, err)
		assert.False(t, ok)

		_, err = db.Get([]byte("del"))
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("DeleteNonexistent", func(t *testing.T) {
		assert.NoError(t, db.Delete([]byte("never-existed")))
	})

	t.Run("EmptyValue", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("empty"), []byte{}))
		val, err := db.Get([]byte("empty"))
		require.NoError(t, err)
		assert.Empty(t, val)
	})

	t.Run("BinaryData", func(t *testing.T) {
		key := []byte{0x00, 0x01, 0xFF}
		value := make([]byte, 256)
		for i := range value {
			value[i] = byte(i)
		}
		require.NoError(t, db.Put(key, value))
		got, err := db.Get(key)
		require.NoError(t, err)
		assert.Equal(t, value, got)
	})

	t.Run("ValueNotAliased", func(t *testing.T) {
		value := []byte("original")
		require.NoError(t, db.Put([]byte("alias"), value))
		value[0] = 'X'
		got, err := db.Get([]byte("alias"))
		require.NoError(t, err)
		assert.Equal(t, []byte("original"), got)
	})

	t.Run("ForEachOrdered", func(t *testing.T) {
		require.NoError(t, db.Put([]byte("prefix/c"), []byte("3")))
		require.NoError(t, db.Put([]byte("prefix/a"), []byte("1")))
		require.NoError(t, db.Put([]byte("prefix/b"), []byte("2")))
		require.NoError(t, db.Put([]byte("other/x"), []byte("4")))

		var keys, values []string
		err := db.ForEach([]byte("prefix/"), func(key, value []byte) error {
			keys = append(keys, string(key))
			values = append(values, string(value))
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"prefix/a", "prefix/b", "prefix/c"}, keys)
		assert.Equal(t, []string{"1", "2", "3"}, values)
	})

	t.Run("ForEachStop", func(t *testing.T) {
		stop := errors.New("stop")
		count := 0
		err := db.ForEach([]byte("prefix/"), func(key, value []byte) error {
			count++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, count)
	})

	t.Run("ForEachEmpty", func(t *testing.T) {
		count := 0
		err := db.ForEach([]byte("nonexistent/"), func(key, value []byte) error {
			count++
			return nil
		})
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	if b, ok := db.(Batcher); ok {
		t.Run("Batch", func(t *testing.T) { testBatch(t, db, b) })
	}
}

func testBatch(t *testing.T, db DB, b Batcher) {
	require.NoError(t, db.Put([]byte("batch/old"), []byte("gone")))

	batch := b.NewBatch()
	for i := 0; i < 5; i++ {
		require.NoError(t, batch.Put([]byte(fmt.Sprintf("batch/%d", i)), []byte{byte(i)}))
	}
	require.NoError(t, batch.Delete([]byte("batch/old")))

	ok, err := db.Has([]byte("batch/0"))
	require.NoError(t, err)
	assert.False(t, ok, "writes must not be visible before Commit")

	require.NoError(t, batch.Commit())

	n := 0
	require.NoError(t, db.ForEach([]byte("batch/"), func(key, value []byte) error {
		n++
		return nil
	}))
	assert.Equal(t, 5, n)
	_, err = db.Get([]byte("batch/old"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryDB(t *testing.T) {
	db := NewMemory()
	defer db.Close()
	testDB(t, db)
}

func TestBadgerDB(t *testing.T) {
	db, err := NewBadger(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	testDB(t, db)
}

func TestLevelDB(t *testing.T) {
	db, err := NewLevelDB(t.TempDir())
	require.NoError(t, err)
	defer db.Close()
	testDB(t, db)
}

func TestPersistence(t *testing.T) {
	for _, backend := range []string{BackendBadger, BackendLevelDB} {
		t.Run(backend, func(t *testing.T) {
			dir := t.TempDir()

			db1, err := Open(backend, dir)
			require.NoError(t, err)
			require.NoError(t, db1.Put([]byte("persist"), []byte("data")))
			require.NoError(t, db1.Close())

			db2, err := Open(backend, dir)
			require.NoError(t, err)
			defer db2.Close()

			val, err := db2.Get([]byte("persist"))
			require.NoError(t, err)
			assert.Equal(t, []byte("data"), val)
		})
	}
}

func TestOpen_UnknownBackend(t *testing.T) {
	_, err := Open("sqlite", t.TempDir())
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
