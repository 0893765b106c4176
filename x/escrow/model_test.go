package escrow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDerivedAddresses(t *testing.T) {
	conf := Configuration{DomainTag: "escrow"}
	depositor := ledgertest.NewCondition().Address()

	record, recordBump, err := RecordCondition(conf, depositor, 7)
	require.NoError(t, err)
	again, againBump, err := RecordCondition(conf, depositor, 7)
	require.NoError(t, err)
	assert.Equal(t, record, again)
	assert.Equal(t, recordBump, againBump)
	assert.True(t, ledger.VerifyDerivation(record.Address(), "escrow", recordBump, seeds(recordSeed, depositor, 7)...))

	custody, _, err := CustodyCondition(conf, depositor, 7)
	require.NoError(t, err)
	assert.NotEqual(t, record.Address(), custody.Address())

	other, _, err := RecordCondition(conf, depositor, 8)
	require.NoError(t, err)
	assert.NotEqual(t, record.Address(), other.Address())

	other, _, err = RecordCondition(conf, ledgertest.NewCondition().Address(), 7)
	require.NoError(t, err)
	assert.NotEqual(t, record.Address(), other.Address())

	_, err = verifyCanonical(conf, recordSeed, depositor, 7, 300, record.Address())
	require.True(t, ErrDerivation.Is(err), "%+v", err)
	got, err := verifyCanonical(conf, recordSeed, depositor, 7, uint32(recordBump), record.Address())
	require.NoError(t, err)
	assert.Equal(t, record, got)
}

func TestRecordAuthority(t *testing.T) {
	conf := Configuration{DomainTag: "escrow"}
	depositor := ledgertest.NewCondition().Address()
	msg, err := NewDepositMsg(conf, depositor, ledgertest.NewCondition().Address(), "M", 1, 3, ledgertest.NewCondition().Address())
	require.NoError(t, err)

	e := &Escrow{
		Depositor:   depositor,
		Nonce:       3,
		RecordBump:  msg.RecordBump,
		CustodyBump: msg.CustodyBump,
		Custody:     msg.Custody,
	}
	cond, err := recordAuthority(conf, e, msg.Record)
	require.NoError(t, err)
	assert.Equal(t, msg.Record, cond.Address())

	_, err = recordAuthority(conf, e, ledgertest.NewCondition().Address())
	require.True(t, ErrDerivation.Is(err), "%+v", err)

	e.Custody = ledgertest.NewCondition().Address()
	_, err = recordAuthority(conf, e, msg.Record)
	require.True(t, ErrDerivation.Is(err), "%+v", err)
}

func TestAuthenticate(t *testing.T) {
	cond := ledgertest.NewCondition()
	auth := Authenticate{}

	ctx := context.Background()
	assert.Nil(t, auth.GetConditions(ctx))
	assert.False(t, auth.HasAddress(ctx, cond.Address()))

	ctx = withEscrow(ctx, cond)
	assert.Equal(t, []ledger.Condition{cond}, auth.GetConditions(ctx))
	assert.True(t, auth.HasAddress(ctx, cond.Address()))
	assert.False(t, auth.HasAddress(ctx, ledgertest.NewCondition().Address()))
}

func TestEscrowValidate(t *testing.T) {
	valid := func() *Escrow {
		return &Escrow{
			Depositor:         ledgertest.NewCondition().Address(),
			Counterparty:      ledgertest.NewCondition().Address(),
			Ticker:            "M",
			RefundDestination: ledgertest.NewCondition().Address(),
			Amount:            10,
			RecordBump:        255,
			CustodyBump:       254,
			Custody:           ledgertest.NewCondition().Address(),
		}
	}
	cases := map[string]struct {
		mutate  func(*Escrow)
		wantErr *errors.Error
	}{
		"valid": {
			mutate: func(*Escrow) {},
		},
		"zero amount": {
			mutate:  func(e *Escrow) { e.Amount = 0 },
			wantErr: errors.ErrAmount,
		},
		"missing counterparty": {
			mutate:  func(e *Escrow) { e.Counterparty = nil },
			wantErr: errors.ErrInput,
		},
		"invalid ticker": {
			mutate:  func(e *Escrow) { e.Ticker = "" },
			wantErr: errors.ErrModel,
		},
		"bump out of range": {
			mutate:  func(e *Escrow) { e.CustodyBump = 256 },
			wantErr: errors.ErrModel,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			e := valid()
			tc.mutate(e)
			err := e.Validate()
			require.True(t, tc.wantErr.Is(err), "unexpected error: %+v", err)
		})
	}
}

func TestDepositMsgValidate(t *testing.T) {
	conf := Configuration{DomainTag: "escrow"}
	d := ledgertest.NewCondition().Address()
	valid, err := NewDepositMsg(conf, d, ledgertest.NewCondition().Address(), "M", 10, 1, ledgertest.NewCondition().Address())
	require.NoError(t, err)
	require.NoError(t, valid.Validate())

	self := *valid
	self.Counterparty = d
	require.True(t, errors.ErrInput.Is(self.Validate()))

	zero := *valid
	zero.Amount = 0
	require.True(t, errors.ErrAmount.Is(zero.Validate()))

	badRefund := *valid
	badRefund.RefundDestination = ledger.Address("short")
	require.True(t, errors.ErrInput.Is(badRefund.Validate()))

	require.True(t, errors.ErrInput.Is((&ReleaseMsg{}).Validate()))
	require.True(t, errors.ErrInput.Is((&CancelMsg{}).Validate()))
	require.True(t, errors.ErrInput.Is((&WithdrawMsg{}).Validate()))
}

func TestLoadConfiguration(t *testing.T) {
	var opts ledger.Options
	require.NoError(t, json.Unmarshal([]byte(`{"conf": {"escrow": {"domain_tag": "escrow", "record_reserve": 4}}}`), &opts))
	conf, err := LoadConfiguration(opts)
	require.NoError(t, err)
	assert.Equal(t, Configuration{DomainTag: "escrow", RecordReserve: 4}, conf)

	require.NoError(t, json.Unmarshal([]byte(`{"conf": {"escrow": {"domain_tag": "a/b"}}}`), &opts))
	_, err = LoadConfiguration(opts)
	require.True(t, errors.ErrInput.Is(err), "%+v", err)
}
