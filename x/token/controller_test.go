package token

import (
	"context"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture prepares a store with the native asset "NAT" and the asset "M".
// Alice holds 1000 of both in her associated accounts.
type fixture struct {
	db    ledger.KVStore
	auth  *ledgertest.CtxAuth
	ctrl  BaseController
	alice ledger.Condition
}

func newFixture(t *testing.T, reserve uint64) *fixture {
	t.Helper()
	auth := &ledgertest.CtxAuth{Key: "auth"}
	f := &fixture{
		db:    store.MemStore(),
		auth:  auth,
		ctrl:  NewController(auth, Configuration{NativeTicker: "NAT", AccountReserve: reserve}),
		alice: ledgertest.NewCondition(),
	}
	assets := NewAssetBucket()
	require.NoError(t, assets.Put(f.db, []byte("NAT"), &Asset{Ticker: "NAT", Name: "native"}))
	require.NoError(t, assets.Put(f.db, []byte("M"), &Asset{Ticker: "M"}))
	f.fund(t, f.alice.Address(), "NAT", 1000)
	f.fund(t, f.alice.Address(), "M", 1000)
	return f
}

func (f *fixture) fund(t *testing.T, owner ledger.Address, ticker string, amount uint64) ledger.Address {
	t.Helper()
	addr, err := AssociatedAddress(owner, ticker)
	require.NoError(t, err)
	acct := &Account{Address: addr, Owner: owner, Ticker: ticker, Balance: amount}
	require.NoError(t, NewAccountBucket().Put(f.db, addr, acct))
	return addr
}

func (f *fixture) signed(conds ...ledger.Condition) ledger.Context {
	return f.auth.SetConditions(context.Background(), conds...)
}

func TestTransfer(t *testing.T) {
	f := newFixture(t, 0)
	bob := ledgertest.NewCondition()
	src, err := AssociatedAddress(f.alice.Address(), "M")
	require.NoError(t, err)
	dst := f.fund(t, bob.Address(), "M", 0)
	native, err := AssociatedAddress(f.alice.Address(), "NAT")
	require.NoError(t, err)

	cases := map[string]struct {
		ctx       ledger.Context
		from, to  ledger.Address
		authority ledger.Address
		amount    uint64
		wantErr   *errors.Error
	}{
		"not signed": {
			ctx:  f.signed(),
			from: src, to: dst, authority: f.alice.Address(), amount: 1,
			wantErr: errors.ErrUnauthorized,
		},
		"not the owner": {
			ctx:  f.signed(bob),
			from: src, to: dst, authority: bob.Address(), amount: 1,
			wantErr: errors.ErrUnauthorized,
		},
		"zero amount": {
			ctx:  f.signed(f.alice),
			from: src, to: dst, authority: f.alice.Address(), amount: 0,
			wantErr: errors.ErrAmount,
		},
		"insufficient balance": {
			ctx:  f.signed(f.alice),
			from: src, to: dst, authority: f.alice.Address(), amount: 1001,
			wantErr: errors.ErrInsufficientAmount,
		},
		"asset mismatch": {
			ctx:  f.signed(f.alice),
			from: native, to: dst, authority: f.alice.Address(), amount: 1,
			wantErr: ErrAssetMismatch,
		},
		"missing destination": {
			ctx:  f.signed(f.alice),
			from: src, to: ledgertest.NewCondition().Address(), authority: f.alice.Address(), amount: 1,
			wantErr: errors.ErrNotFound,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			err := f.ctrl.Transfer(tc.ctx, f.db, tc.from, tc.to, tc.authority, tc.amount)
			require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
		})
	}

	require.NoError(t, f.ctrl.Transfer(f.signed(f.alice), f.db, src, dst, f.alice.Address(), 400))
	bal, err := f.ctrl.Balance(f.db, src)
	require.NoError(t, err)
	assert.Equal(t, uint64(600), bal)
	bal, err = f.ctrl.Balance(f.db, dst)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), bal)
}

func TestCreateAndCloseAccount(t *testing.T) {
	f := newFixture(t, 10)
	authority := ledgertest.NewCondition()
	addr := ledgertest.NewCondition().Address()

	_, err := f.ctrl.CreateAccount(f.signed(), f.db, f.alice.Address(), addr, "M", authority.Address())
	require.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	_, err = f.ctrl.CreateAccount(f.signed(f.alice), f.db, f.alice.Address(), addr, "XYZ", authority.Address())
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)

	acct, err := f.ctrl.CreateAccount(f.signed(f.alice), f.db, f.alice.Address(), addr, "M", authority.Address())
	require.NoError(t, err)
	assert.Equal(t, uint64(10), acct.Reserve)
	assert.Equal(t, authority.Address(), acct.Owner)

	native, err := AssociatedAddress(f.alice.Address(), "NAT")
	require.NoError(t, err)
	bal, err := f.ctrl.Balance(f.db, native)
	require.NoError(t, err)
	assert.Equal(t, uint64(990), bal)

	_, err = f.ctrl.CreateAccount(f.signed(f.alice), f.db, f.alice.Address(), addr, "M", authority.Address())
	require.True(t, errors.ErrDuplicate.Is(err), "%+v", err)

	owned, err := f.ctrl.ByOwner(f.db, authority.Address())
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, addr, owned[0].Address)

	// A non empty account cannot be closed.
	src, err := AssociatedAddress(f.alice.Address(), "M")
	require.NoError(t, err)
	require.NoError(t, f.ctrl.Transfer(f.signed(f.alice), f.db, src, addr, f.alice.Address(), 5))
	err = f.ctrl.Close(f.signed(authority), f.db, addr, f.alice.Address(), authority.Address())
	require.True(t, errors.ErrState.Is(err), "%+v", err)

	require.NoError(t, f.ctrl.Transfer(f.signed(authority), f.db, addr, src, authority.Address(), 5))

	err = f.ctrl.Close(f.signed(f.alice), f.db, addr, f.alice.Address(), f.alice.Address())
	require.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	require.NoError(t, f.ctrl.Close(f.signed(authority), f.db, addr, f.alice.Address(), authority.Address()))
	_, err = f.ctrl.Account(f.db, addr)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)

	bal, err = f.ctrl.Balance(f.db, native)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), bal)
}

func TestReserves(t *testing.T) {
	f := newFixture(t, 0)
	bob := ledgertest.NewCondition()

	// Zero reserve is always free.
	require.NoError(t, f.ctrl.ChargeReserve(f.signed(), f.db, bob.Address(), 0))

	err := f.ctrl.ChargeReserve(f.signed(bob), f.db, bob.Address(), 5)
	require.True(t, errors.ErrNotFound.Is(err), "%+v", err)

	err = f.ctrl.ChargeReserve(f.signed(f.alice), f.db, f.alice.Address(), 5000)
	require.True(t, errors.ErrInsufficientAmount.Is(err), "%+v", err)

	// Refund creates the native account when missing.
	require.NoError(t, f.ctrl.RefundReserve(f.db, bob.Address(), 7))
	native, err := AssociatedAddress(bob.Address(), "NAT")
	require.NoError(t, err)
	acct, err := f.ctrl.Account(f.db, native)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), acct.Balance)
	assert.Equal(t, bob.Address(), acct.Owner)

	nat, err := f.ctrl.NativeAccount(f.db, bob.Address())
	require.NoError(t, err)
	assert.Equal(t, native, nat.Address)

	require.NoError(t, f.ctrl.ChargeReserve(f.signed(bob), f.db, bob.Address(), 7))
	bal, err := f.ctrl.Balance(f.db, native)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), bal)
}

func TestAssociatedAddress(t *testing.T) {
	owner := ledgertest.NewCondition().Address()
	a, err := AssociatedAddress(owner, "M")
	require.NoError(t, err)
	b, err := AssociatedAddress(owner, "M")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := AssociatedAddress(owner, "NAT")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)

	_, err = AssociatedAddress(owner, "bad")
	require.True(t, errors.ErrInput.Is(err))
	_, err = AssociatedAddress(nil, "M")
	require.True(t, errors.ErrInput.Is(err))
}
