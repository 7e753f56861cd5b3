package pebble

import (
	"context"
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/database"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/database/dbtest"
	"github.com/stretchr/testify/require"
)

func TestPebbleDB(t *testing.T) {
	db, err := Open(t.TempDir())
	require.NoError(t, err)
	defer db.Close()

	dbtest.Run(t, db)
}

func TestPebbleReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	db, err := Open(dir)
	require.NoError(t, err)
	require.NoError(t, db.Write(ctx, []byte("k"), []byte("v")))
	require.NoError(t, db.Close())

	_, err = db.Read(ctx, []byte("k"))
	require.ErrorIs(t, err, database.ErrDBClosed)

	db, err = Open(dir)
	require.NoError(t, err)
	defer db.Close()
	v, err := db.Read(ctx, []byte("k"))
	require.NoError(t, err)
	require.Equal(t, []byte("v"), v)
}
