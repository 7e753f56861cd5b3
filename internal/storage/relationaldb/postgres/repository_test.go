package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb/reltest"
	"github.com/stretchr/testify/require"
)

// Set FPSALED_TEST_POSTGRES_DSN to a disposable database to run these.
func testConfig(t *testing.T) *relationaldb.Config {
	dsn := os.Getenv("FPSALED_TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("FPSALED_TEST_POSTGRES_DSN not set")
	}
	cfg := relationaldb.NewConfig()
	cfg.Driver = "postgres"
	cfg.ConnectionString = dsn
	return cfg
}

func TestPostgresRepository(t *testing.T) {
	cfg := testConfig(t)
	ctx := context.Background()

	repo, err := Open(ctx, cfg)
	require.NoError(t, err)
	_, err = repo.db.ExecContext(ctx, `TRUNCATE transactions`)
	require.NoError(t, err)

	reltest.Run(t, repo)
}

func TestOpenFailsWithoutServer(t *testing.T) {
	cfg := relationaldb.NewConfig()
	cfg.Driver = "postgres"
	cfg.ConnectionString = "postgres://nobody@127.0.0.1:1/none?sslmode=disable&connect_timeout=1"

	_, err := Open(context.Background(), cfg)
	var dbErr *relationaldb.DatabaseError
	require.ErrorAs(t, err, &dbErr)
	require.True(t, dbErr.IsRetryable())
}
