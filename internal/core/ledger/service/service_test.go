package service_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/entry"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/genesis"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/service"
	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/service/mock_service"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/market"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/LeJamon/goFixedPriceSale/internal/storage/relationaldb"
	"github.com/gagliardetto/solana-go"
	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b byte) solana.PublicKey {
	var k solana.PublicKey
	k[0], k[1] = b, 0x5A
	return k
}

var (
	alice = key(1)
	bob   = key(2)
	usdc  = key(3)
)

func newState(t *testing.T) *ledger.State {
	t.Helper()
	state := ledger.NewMemoryState()
	_, err := genesis.Apply(state, &genesis.Genesis{
		Accounts: []genesis.Account{{Address: alice}, {Address: bob}},
		Mints:    []genesis.Mint{{Address: usdc, Authority: alice, Decimals: 2}},
		Balances: []genesis.Balance{{Owner: bob, Mint: usdc, Amount: "10.25"}},
	})
	require.NoError(t, err)
	return state
}

func newService(state *ledger.State, recorder service.Recorder, hooks *service.EventHooks) *service.Service {
	return service.New(state, service.Config{
		Engine:   tx.EngineConfig{SkipSignatureVerification: true},
		Recorder: recorder,
		Hooks:    hooks,
	})
}

func createStore(signer solana.PublicKey, seq uint32, name string) *market.CreateStore {
	c := market.NewCreateStore(signer, name, "")
	c.SetSequence(seq)
	return c
}

func TestSubmitRecordsOutcome(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mock_service.NewMockRecorder(ctrl)

	var saved []*relationaldb.TxRecord
	rec.EXPECT().SaveTransaction(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, r *relationaldb.TxRecord) error {
			saved = append(saved, r)
			return nil
		}).Times(2)

	svc := newService(newState(t), rec, nil)
	ctx := context.Background()

	res, err := svc.Submit(ctx, createStore(alice, 1, "Shop"))
	require.NoError(t, err)
	require.Equal(t, tx.TesSUCCESS, res.Result)

	// Replaying the same sequence is rejected and still recorded.
	res, err = svc.Submit(ctx, createStore(alice, 1, "Shop"))
	require.NoError(t, err)
	require.Equal(t, tx.TefPAST_SEQ, res.Result)

	require.Len(t, saved, 2)
	assert.True(t, saved[0].Applied)
	assert.Equal(t, "CreateStore", saved[0].Type)
	assert.Equal(t, alice.String(), saved[0].Account)
	assert.Contains(t, string(saved[0].Metadata), "CreatedNode")
	assert.Contains(t, string(saved[0].RawTx), `"Name":"Shop"`)
	assert.False(t, saved[1].Applied)
	assert.Equal(t, "tefPAST_SEQ", saved[1].Result)
	assert.Nil(t, saved[1].Metadata)
}

func TestSubmitRecorderFailureKeepsLedgerChange(t *testing.T) {
	ctrl := gomock.NewController(t)
	rec := mock_service.NewMockRecorder(ctrl)
	rec.EXPECT().SaveTransaction(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	state := newState(t)
	svc := newService(state, rec, nil)

	c := createStore(alice, 1, "Shop")
	res, err := svc.Submit(context.Background(), c)
	require.ErrorIs(t, err, service.ErrRecordFailed)
	require.True(t, res.Applied)

	ok, err := state.Exists(c.StoreKeylet())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSubmitBatchKeepsPerSignerOrder(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	hooks := &service.EventHooks{OnTransaction: func(tx.Transaction, *service.SubmitResult) {
		mu.Lock()
		calls++
		mu.Unlock()
	}}
	svc := newService(newState(t), nil, hooks)

	txs := []tx.Transaction{
		createStore(alice, 1, "A1"),
		createStore(bob, 1, "B1"),
		createStore(alice, 2, "A2"),
		createStore(alice, 3, "A3"),
		createStore(bob, 2, "B2"),
	}
	batch, err := svc.SubmitBatch(context.Background(), txs)
	require.NoError(t, err)
	require.NotEmpty(t, batch.ID)
	require.Len(t, batch.Results, len(txs))
	assert.Equal(t, len(txs), batch.Applied())
	assert.Equal(t, len(txs), calls)

	for _, r := range batch.Results {
		assert.Equal(t, tx.TesSUCCESS, r.Result)
		assert.Equal(t, batch.ID, r.BatchID)
	}

	counts, err := svc.EntryCounts()
	require.NoError(t, err)
	assert.Equal(t, 5, counts[entry.TypeStore])
}

func TestSubmitBatchRejectsNil(t *testing.T) {
	svc := newService(newState(t), nil, nil)
	_, err := svc.SubmitBatch(context.Background(), []tx.Transaction{nil})
	require.ErrorIs(t, err, service.ErrNilTransaction)

	_, err = svc.Submit(context.Background(), nil)
	require.ErrorIs(t, err, service.ErrNilTransaction)
}

func TestQueries(t *testing.T) {
	svc := newService(newState(t), nil, nil)

	balance, err := svc.GetTokenBalance(bob, usdc)
	require.NoError(t, err)
	assert.Equal(t, uint64(1025), balance)

	balance, err = svc.GetTokenBalance(alice, usdc)
	require.NoError(t, err)
	assert.Zero(t, balance)

	c := createStore(alice, 1, "Shop")
	_, err = svc.Submit(context.Background(), c)
	require.NoError(t, err)

	res, err := svc.GetLedgerEntry(c.StoreKeylet().Key)
	require.NoError(t, err)
	assert.Equal(t, "Store", res.Kind)
	assert.Equal(t, "Shop", res.Entry.(*sle.Store).Name)

	_, err = svc.GetMarket(c.StoreKeylet().Key)
	require.ErrorIs(t, err, sle.ErrWrongEntryType)

	_, err = svc.GetLedgerEntry([32]byte{0xEE})
	require.ErrorIs(t, err, service.ErrEntryNotFound)
}
