package tx

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/LeJamon/goFixedPriceSale/internal/core/tx/sle"
	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type engineFixture struct {
	view   *memView
	engine *Engine
	alice  *solana.Wallet
	bob    *solana.Wallet
	mint   [32]byte
	from   [32]byte
	to     [32]byte
}

func newEngineFixture(t *testing.T, skipSig bool) *engineFixture {
	t.Helper()
	f := &engineFixture{
		view:  newMemView(),
		alice: solana.NewWallet(),
		bob:   solana.NewWallet(),
		mint:  solana.NewWallet().PublicKey(),
	}
	f.view.putAccount(f.alice.PublicKey(), 1)
	f.view.putAccount(f.bob.PublicKey(), 1)
	f.from = f.view.putTokenAccount(f.alice.PublicKey(), f.mint, 10)
	f.to = f.view.putTokenAccount(f.bob.PublicKey(), f.mint, 0)
	f.engine = NewEngine(f.view, EngineConfig{
		SkipSignatureVerification: skipSig,
		Clock:                     fixedClock{time.Unix(1_700_000_000, 0)},
	})
	return f
}

func (f *engineFixture) balance(t *testing.T, key [32]byte) uint64 {
	t.Helper()
	acc, err := ReadTokenAccount(f.view, key)
	require.NoError(t, err)
	return acc.Amount
}

func (f *engineFixture) sequence(t *testing.T, owner [32]byte) uint32 {
	t.Helper()
	data, err := f.view.Read(keylet.Account(owner))
	require.NoError(t, err)
	root, err := sle.ParseAccountRoot(data)
	require.NoError(t, err)
	return root.Sequence
}

func TestEngineAppliesAndBumpsSequence(t *testing.T) {
	f := newEngineFixture(t, true)

	res := f.engine.Apply(newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 4))
	require.Equal(t, TesSUCCESS, res.Result, res.Message)
	require.True(t, res.Applied)

	assert.Equal(t, uint64(6), f.balance(t, f.from))
	assert.Equal(t, uint64(4), f.balance(t, f.to))
	assert.Equal(t, uint32(2), f.sequence(t, f.alice.PublicKey()))

	require.NotNil(t, res.Metadata)
	assert.Len(t, res.Metadata.AffectedNodes, 3)
	for _, n := range res.Metadata.AffectedNodes {
		assert.Equal(t, "ModifiedNode", n.NodeType)
	}
}

func TestEngineFailureCommitsNothing(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(f *engineFixture, tx *transferTx)
		want   Result
	}{
		{
			name:   "insufficient funds",
			mutate: func(f *engineFixture, tx *transferTx) { tx.Amount = 11 },
			want:   TecINSUFFICIENT_FUNDS,
		},
		{
			name:   "forced tec after transfer",
			mutate: func(f *engineFixture, tx *transferTx) { tx.Fail = TecMARKET_NOT_ACTIVE },
			want:   TecMARKET_NOT_ACTIVE,
		},
		{
			name: "undeclared account access",
			mutate: func(f *engineFixture, tx *transferTx) {
				extra := [32]byte{7}
				tx.Extra = &extra
			},
			want: TefINTERNAL,
		},
		{
			name:   "past sequence",
			mutate: func(f *engineFixture, tx *transferTx) { f.view.putAccount(f.alice.PublicKey(), 5); tx.Sequence = 4 },
			want:   TefPAST_SEQ,
		},
		{
			name:   "future sequence",
			mutate: func(f *engineFixture, tx *transferTx) { tx.Sequence = 2 },
			want:   TerPRE_SEQ,
		},
		{
			name:   "malformed",
			mutate: func(f *engineFixture, tx *transferTx) { tx.Amount = 0 },
			want:   TemINVALID_PARAMETERS,
		},
		{
			name:   "not the owner of the source",
			mutate: func(f *engineFixture, tx *transferTx) { tx.From, tx.To = tx.To, tx.From },
			want:   TecUNAUTHORIZED,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newEngineFixture(t, true)
			tx := newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 4)
			tt.mutate(f, tx)
			seqBefore := f.sequence(t, f.alice.PublicKey())

			res := f.engine.Apply(tx)
			require.Equal(t, tt.want, res.Result)
			require.False(t, res.Applied)
			require.Nil(t, res.Metadata)

			assert.Equal(t, uint64(10), f.balance(t, f.from))
			assert.Equal(t, uint64(0), f.balance(t, f.to))
			assert.Equal(t, seqBefore, f.sequence(t, f.alice.PublicKey()))
		})
	}
}

func TestEngineUnknownAccount(t *testing.T) {
	f := newEngineFixture(t, true)
	stranger := solana.NewWallet().PublicKey()

	res := f.engine.Apply(newTransferTx(stranger, 1, f.from, f.to, 1))
	require.Equal(t, TerNO_ACCOUNT, res.Result)
}

func TestEngineSignatures(t *testing.T) {
	f := newEngineFixture(t, false)

	unsigned := newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 1)
	require.Equal(t, TefBAD_SIGNATURE, f.engine.Apply(unsigned).Result)

	wrongKey := newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 1)
	require.Error(t, Sign(wrongKey, f.bob.PrivateKey))

	tampered := newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 1)
	require.NoError(t, Sign(tampered, f.alice.PrivateKey))
	tampered.Amount = 2
	require.Equal(t, TefBAD_SIGNATURE, f.engine.Apply(tampered).Result)

	signed := newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 1)
	require.NoError(t, Sign(signed, f.alice.PrivateKey))
	require.NoError(t, VerifySignature(signed))
	require.Equal(t, TesSUCCESS, f.engine.Apply(signed).Result)
}

func TestEngineHashIgnoresSignature(t *testing.T) {
	f := newEngineFixture(t, false)
	tx := newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 1)

	before, err := ComputeTransactionHash(tx)
	require.NoError(t, err)
	require.NoError(t, Sign(tx, f.alice.PrivateKey))
	after, err := ComputeTransactionHash(tx)
	require.NoError(t, err)
	require.Equal(t, before, after)

	tx.Amount = 2
	changed, err := ComputeTransactionHash(tx)
	require.NoError(t, err)
	require.NotEqual(t, before, changed)
}

func TestEngineLockWaitHonorsContext(t *testing.T) {
	f := newEngineFixture(t, true)

	release, err := f.engine.locks.Acquire(context.Background(), []AccountMeta{Writable(f.from)})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	res := f.engine.ApplyWithContext(ctx, newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 1))
	require.Equal(t, TelFAILED_PROCESSING, res.Result)
	require.Equal(t, uint64(10), f.balance(t, f.from))
}

func TestEngineConcurrentTransfersAreSerialized(t *testing.T) {
	f := newEngineFixture(t, true)

	// Every transfer uses the same sequence; exactly one may win it.
	const workers = 8
	var wg sync.WaitGroup
	results := make([]Result, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i] = f.engine.Apply(newTransferTx(f.alice.PublicKey(), 1, f.from, f.to, 1)).Result
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, r := range results {
		if r == TesSUCCESS {
			succeeded++
		} else {
			assert.Equal(t, TefPAST_SEQ, r)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, uint64(9), f.balance(t, f.from))
	assert.Zero(t, f.engine.locks.Held())
}

func TestParseValidationError(t *testing.T) {
	tests := []struct {
		msg  string
		want Result
	}{
		{"temINVALID_PARAMETERS: price", TemINVALID_PARAMETERS},
		{"temMALFORMED: missing", TemMALFORMED},
		{"temINVALID_PARAMETERS", TemINVALID_PARAMETERS},
		{"tecUNAUTHORIZED: not a tem code", TemMALFORMED},
		{"something else", TemMALFORMED},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			assert.Equal(t, tt.want, parseValidationError(errorString(tt.msg)))
		})
	}
}

type errorString string

func (e errorString) Error() string { return string(e) }
