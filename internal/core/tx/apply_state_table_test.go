package tx

import (
	"testing"

	"github.com/LeJamon/goFixedPriceSale/internal/core/ledger/keylet"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStateTableBuffersUntilApply(t *testing.T) {
	base := newMemView()
	a := keylet.Keylet{Key: [32]byte{1}}
	b := keylet.Keylet{Key: [32]byte{2}}
	base.entries[a.Key] = []byte("a0")

	table := NewApplyStateTable(base, [32]byte{}, nil)
	require.NoError(t, table.Update(a, []byte("a1")))
	require.NoError(t, table.Insert(b, []byte("b1")))

	got, err := table.Read(a)
	require.NoError(t, err)
	assert.Equal(t, []byte("a1"), got)
	assert.Equal(t, []byte("a0"), base.entries[a.Key])
	assert.Equal(t, 2, table.Changes())

	_, err = table.Apply()
	require.NoError(t, err)
	assert.Equal(t, []byte("a1"), base.entries[a.Key])
	assert.Equal(t, []byte("b1"), base.entries[b.Key])
}

func TestApplyStateTableInsertThenErase(t *testing.T) {
	base := newMemView()
	k := keylet.Keylet{Key: [32]byte{1}}

	table := NewApplyStateTable(base, [32]byte{}, nil)
	require.NoError(t, table.Insert(k, []byte("x")))
	require.ErrorIs(t, table.Insert(k, []byte("y")), ErrEntryExists)
	require.NoError(t, table.Erase(k))

	exists, err := table.Exists(k)
	require.NoError(t, err)
	assert.False(t, exists)
	assert.Zero(t, table.Changes())

	md, err := table.Apply()
	require.NoError(t, err)
	assert.Empty(t, md.AffectedNodes)
	assert.Zero(t, base.len())
}

func TestApplyStateTableUpdateMissing(t *testing.T) {
	table := NewApplyStateTable(newMemView(), [32]byte{}, nil)
	require.ErrorIs(t, table.Update(keylet.Keylet{Key: [32]byte{9}}, []byte("x")), ErrEntryNotFound)
	require.ErrorIs(t, table.Erase(keylet.Keylet{Key: [32]byte{9}}), ErrEntryNotFound)
}

func TestApplyStateTableAccessChecks(t *testing.T) {
	base := newMemView()
	rw := keylet.Keylet{Key: [32]byte{1}}
	ro := keylet.Keylet{Key: [32]byte{2}}
	other := keylet.Keylet{Key: [32]byte{3}}
	base.entries[ro.Key] = []byte("ro")

	table := NewApplyStateTable(base, [32]byte{}, []AccountMeta{Writable(rw.Key), Readonly(ro.Key)})

	require.NoError(t, table.Insert(rw, []byte("rw")))
	_, err := table.Read(ro)
	require.NoError(t, err)

	require.ErrorIs(t, table.Update(ro, []byte("x")), ErrReadonlyAccount)
	_, err = table.Read(other)
	require.ErrorIs(t, err, ErrUndeclaredAccount)
	_, err = table.Exists(other)
	require.ErrorIs(t, err, ErrUndeclaredAccount)
	require.ErrorIs(t, table.Insert(other, []byte("x")), ErrUndeclaredAccount)

	assert.Equal(t, TefINTERNAL, ViewResult(err))
}
