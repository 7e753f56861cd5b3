// Package dbtest holds the behaviour every database.DB backend must share.
package dbtest

import (
	"context"
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises db. The database must be empty.
func Run(t *testing.T, db database.DB) {
	t.Helper()
	ctx := context.Background()

	t.Run("ReadWriteDelete", func(t *testing.T) {
		_, err := db.Read(ctx, []byte("missing"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)

		require.NoError(t, db.Write(ctx, []byte("k1"), []byte("v1")))
		got, err := db.Read(ctx, []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), got)

		// Returned slices belong to the caller.
		got[0] = 'x'
		again, err := db.Read(ctx, []byte("k1"))
		require.NoError(t, err)
		assert.Equal(t, []byte("v1"), again)

		require.NoError(t, db.Delete(ctx, []byte("k1")))
		_, err = db.Read(ctx, []byte("k1"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("Batch", func(t *testing.T) {
		require.NoError(t, db.Write(ctx, []byte("b/old"), []byte("x")))
		err := db.Batch(ctx, []database.BatchOperation{
			{Type: database.BatchPut, Key: []byte("b/1"), Value: []byte("one")},
			{Type: database.BatchPut, Key: []byte("b/2"), Value: []byte("two")},
			{Type: database.BatchDelete, Key: []byte("b/old")},
		})
		require.NoError(t, err)

		v, err := db.Read(ctx, []byte("b/2"))
		require.NoError(t, err)
		assert.Equal(t, []byte("two"), v)
		_, err = db.Read(ctx, []byte("b/old"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)

		err = db.Batch(ctx, []database.BatchOperation{{Type: database.BatchOpType(9), Key: []byte("b/3")}})
		require.ErrorIs(t, err, database.ErrBatchOperationFailed)
		_, err = db.Read(ctx, []byte("b/3"))
		require.ErrorIs(t, err, database.ErrKeyNotFound)
	})

	t.Run("IteratorRange", func(t *testing.T) {
		for _, k := range []string{"i/a", "i/b", "i/c", "j/a"} {
			require.NoError(t, db.Write(ctx, []byte(k), []byte(k)))
		}

		it, err := db.Iterator(ctx, []byte("i/"), database.PrefixEnd([]byte("i/")))
		require.NoError(t, err)
		defer it.Close()

		var keys []string
		for it.Next() {
			keys = append(keys, string(it.Key()))
			assert.Equal(t, it.Key(), it.Value())
		}
		require.NoError(t, it.Error())
		assert.Equal(t, []string{"i/a", "i/b", "i/c"}, keys)
	})
}
