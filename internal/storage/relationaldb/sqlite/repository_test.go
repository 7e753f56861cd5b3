package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb/reltest"
	"github.com/stretchr/testify/require"
)

func TestSQLiteRepository(t *testing.T) {
	repo, err := Open(context.Background(), relationaldb.SQLiteConfig(filepath.Join(t.TempDir(), "history.db")))
	require.NoError(t, err)

	reltest.Run(t, repo)
}

func TestOpenThroughRegistry(t *testing.T) {
	ctx := context.Background()
	repo, err := relationaldb.Open(ctx, relationaldb.SQLiteConfig(filepath.Join(t.TempDir(), "h.db")))
	require.NoError(t, err)
	defer repo.Close(ctx)

	require.IsType(t, &Repository{}, repo)
}
