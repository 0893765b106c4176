package app

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/store/iavl"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tendermint/tendermint/libs/log"
)

const chainID = "test-chain"

func TestLedgerLifecycle(t *testing.T) {
	db := iavl.NewMemCommitStore()
	h := &ledgertest.Handler{WriteKey: []byte("k"), WriteValue: []byte("v")}
	l, err := NewLedger(db, h, log.NewNopLogger())
	require.NoError(t, err)
	assert.Equal(t, "", l.ChainID())
	assert.Equal(t, int64(1), l.Height())

	require.True(t, errors.ErrEmpty.Is(l.InitChain(chainID, nil)))
	require.True(t, errors.ErrInput.Is(l.InitChain(chainID, []byte("{"))))
	require.True(t, errors.ErrInput.Is(l.InitChain("bad", []byte("{}"))))
	require.NoError(t, l.InitChain(chainID, []byte("{}")))
	assert.Equal(t, chainID, l.ChainID())
	require.True(t, errors.ErrImmutable.Is(l.InitChain(chainID, []byte("{}"))))

	tx := &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: "test/write"}}
	_, err = l.Deliver(context.Background(), tx)
	require.NoError(t, err)

	// a failing transaction leaves no trace
	h.WriteKey = []byte("fail")
	h.DeliverErr = errors.ErrState
	_, err = l.Deliver(context.Background(), tx)
	require.True(t, errors.ErrState.Is(err))

	id, err := l.Commit()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id.Version)
	assert.Equal(t, int64(2), l.Height())

	v, err := db.Get([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), v)
	v, err = db.Get([]byte("fail"))
	require.NoError(t, err)
	assert.Nil(t, v)

	// chain id and height survive a reload
	reloaded, err := NewLedger(db, h, nil)
	require.NoError(t, err)
	assert.Equal(t, chainID, reloaded.ChainID())
	assert.Equal(t, int64(2), reloaded.Height())
}

func TestLedgerContext(t *testing.T) {
	var seen ledger.Context
	h := &contextHandler{seen: &seen}
	l, err := NewLedger(iavl.NewMemCommitStore(), h, nil)
	require.NoError(t, err)
	require.NoError(t, l.InitChain(chainID, []byte("{}")))

	_, err = l.Check(context.Background(), &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: "test/ctx"}})
	require.NoError(t, err)
	assert.Equal(t, chainID, ledger.GetChainID(seen))
	height, ok := ledger.GetHeight(seen)
	assert.True(t, ok)
	assert.Equal(t, int64(1), height)
}

type contextHandler struct {
	seen *ledger.Context
}

func (h *contextHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	*h.seen = ctx
	return &ledger.CheckResult{}, nil
}

func (h *contextHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	*h.seen = ctx
	return &ledger.DeliverResult{}, nil
}

func TestApplicationEscrow(t *testing.T) {
	depositor := crypto.GenPrivKeyEd25519()
	counterparty := crypto.GenPrivKeyEd25519()
	d := depositor.PublicKey().Address()
	c := counterparty.PublicKey().Address()

	genesis := map[string]interface{}{
		"conf": map[string]interface{}{
			"token":  token.Configuration{NativeTicker: "NAT", AccountReserve: 2},
			"escrow": escrow.Configuration{DomainTag: "escrow", RecordReserve: 3},
		},
		"token": map[string]interface{}{
			"assets": []token.Asset{{Ticker: "NAT"}, {Ticker: "M", Name: "Mint"}},
			"accounts": []token.GenesisAccount{
				{Owner: d, Ticker: "NAT", Balance: 100},
				{Owner: d, Ticker: "M", Balance: 5000},
				{Owner: c, Ticker: "M"},
			},
		},
	}
	raw, err := json.Marshal(genesis)
	require.NoError(t, err)

	db := iavl.NewMemCommitStore()
	l, err := NewApplication(db, log.NewNopLogger())
	require.NoError(t, err)
	require.NoError(t, l.InitChain(chainID, raw))
	_, err = l.Commit()
	require.NoError(t, err)

	balance := func(owner ledger.Address, ticker string) uint64 {
		t.Helper()
		addr, err := token.AssociatedAddress(owner, ticker)
		require.NoError(t, err)
		n, err := token.NewController(Authenticator(), token.Configuration{}).Balance(l.DeliverStore(), addr)
		require.NoError(t, err)
		return n
	}
	run := func(signer *crypto.PrivateKey, msg ledger.Msg) error {
		t.Helper()
		tx := &Tx{Msg: msg}
		require.NoError(t, tx.Sign(l.DeliverStore(), chainID, signer))
		_, err := l.Deliver(context.Background(), tx)
		return err
	}

	dM, err := token.AssociatedAddress(d, "M")
	require.NoError(t, err)
	cM, err := token.AssociatedAddress(c, "M")
	require.NoError(t, err)

	deposit, err := escrow.NewDepositMsg(escrow.Configuration{DomainTag: "escrow"}, d, c, "M", 1000, 7, dM)
	require.NoError(t, err)

	// unsigned transactions are rejected
	_, err = l.Deliver(context.Background(), &Tx{Msg: deposit})
	require.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	// only the depositor can fund the escrow
	err = run(counterparty, deposit)
	require.True(t, errors.ErrUnauthorized.Is(err), "%+v", err)

	checked := &Tx{Msg: deposit}
	require.NoError(t, checked.Sign(l.DeliverStore(), chainID, depositor))
	_, err = l.Check(context.Background(), checked)
	require.NoError(t, err)

	require.NoError(t, run(depositor, deposit))
	assert.Equal(t, uint64(4000), balance(d, "M"))
	assert.Equal(t, uint64(95), balance(d, "NAT"))

	withdraw := &escrow.WithdrawMsg{
		Depositor:    d,
		Counterparty: c,
		Destination:  cM,
		Custody:      deposit.Custody,
		Record:       deposit.Record,
	}
	err = run(counterparty, withdraw)
	require.True(t, escrow.ErrNotReleased.Is(err), "%+v", err)

	require.NoError(t, run(depositor, &escrow.ReleaseMsg{Depositor: d, Record: deposit.Record}))
	require.NoError(t, run(counterparty, withdraw))

	assert.Equal(t, uint64(1000), balance(c, "M"))
	assert.Equal(t, uint64(4000), balance(d, "M"))
	assert.Equal(t, uint64(100), balance(d, "NAT"))

	_, err = l.Commit()
	require.NoError(t, err)

	// replaying the withdraw fails on the signature sequence
	tx := &Tx{Msg: withdraw}
	sig, err := sigs.SignTx(counterparty, tx, chainID, 0)
	require.NoError(t, err)
	tx.Signatures = []*sigs.StdSignature{sig}
	_, err = l.Deliver(context.Background(), tx)
	require.True(t, sigs.ErrInvalidSequence.Is(err), "%+v", err)
}
