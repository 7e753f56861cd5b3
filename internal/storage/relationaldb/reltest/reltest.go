// Package reltest holds the behaviour every TxRepository must share.
package reltest

import (
	"context"
	"testing"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises repo, which must be empty.
func Run(t *testing.T, repo relationaldb.TxRepository) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, repo.Ping(ctx))

	at := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	records := []relationaldb.TxRecord{
		{Hash: relationaldb.Hash{1}, Account: "alice", Sequence: 1, Type: "CreateStore", Result: "tesSUCCESS", Applied: true, RawTx: []byte(`{}`), Metadata: []byte(`{"AffectedNodes":[]}`), CreatedAt: at},
		{Hash: relationaldb.Hash{2}, BatchID: "b-1", Account: "bob", Sequence: 1, Type: "Buy", Result: "tecMARKET_NOT_ACTIVE", RawTx: []byte(`{}`), CreatedAt: at},
		{Hash: relationaldb.Hash{2}, BatchID: "b-2", Account: "bob", Sequence: 1, Type: "Buy", Result: "tesSUCCESS", Applied: true, RawTx: []byte(`{}`), CreatedAt: at.Add(time.Second)},
	}
	for i := range records {
		require.NoError(t, repo.SaveTransaction(ctx, &records[i]))
		assert.NotZero(t, records[i].ID)
	}

	n, err := repo.GetTransactionCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	// Latest record wins for a resubmitted hash.
	got, err := repo.GetTransaction(ctx, relationaldb.Hash{2})
	require.NoError(t, err)
	assert.Equal(t, "tesSUCCESS", got.Result)
	assert.Equal(t, "b-2", got.BatchID)
	assert.True(t, got.Applied)
	assert.Equal(t, at.Add(time.Second), got.CreatedAt)

	got, err = repo.GetTransaction(ctx, relationaldb.Hash{1})
	require.NoError(t, err)
	assert.Equal(t, records[0].Metadata, got.Metadata)
	assert.Empty(t, got.BatchID)

	_, err = repo.GetTransaction(ctx, relationaldb.Hash{9})
	require.ErrorIs(t, err, relationaldb.ErrTransactionNotFound)

	bob, err := repo.GetAccountTransactions(ctx, relationaldb.AccountTxOptions{Account: "bob"})
	require.NoError(t, err)
	require.Len(t, bob, 2)
	assert.Equal(t, "b-2", bob[0].BatchID)

	bob, err = repo.GetAccountTransactions(ctx, relationaldb.AccountTxOptions{Account: "bob", AppliedOnly: true})
	require.NoError(t, err)
	require.Len(t, bob, 1)

	bob, err = repo.GetAccountTransactions(ctx, relationaldb.AccountTxOptions{Account: "bob", Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, bob, 1)
	assert.Equal(t, "b-1", bob[0].BatchID)

	require.NoError(t, repo.Close(ctx))
	require.ErrorIs(t, repo.SaveTransaction(ctx, &records[0]), relationaldb.ErrDatabaseClosed)
}
