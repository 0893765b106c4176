package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

// Every account an escrow operation touches plays exactly one role. Each
// role has its own type so that a loaded account cannot be passed where
// another role is expected, and so that every role is checked once, when it
// is loaded.

// SourceAccount funds a deposit. It is owned by the depositor and holds
// enough of the escrowed asset.
type SourceAccount struct {
	*token.Account
}

// CustodyAccount holds the escrowed funds. Its address and authority are
// derived. It holds at least the escrowed amount.
type CustodyAccount struct {
	*token.Account
}

// RefundAccount receives the funds of a cancelled escrow.
type RefundAccount struct {
	*token.Account
}

// DestinationAccount receives the funds of a withdrawn escrow. It is owned
// by the counterparty.
type DestinationAccount struct {
	*token.Account
}

func loadSource(db ledger.ReadOnlyKVStore, tokens token.Controller, addr, depositor ledger.Address, ticker string, amount uint64) (SourceAccount, error) {
	acct, err := tokens.Account(db, addr)
	if err != nil {
		return SourceAccount{}, errors.Wrap(err, "source")
	}
	if !acct.Owner.Equals(depositor) {
		return SourceAccount{}, errors.Wrap(ErrAccountMismatch, "source is not owned by the depositor")
	}
	if acct.Ticker != ticker {
		return SourceAccount{}, errors.Wrapf(token.ErrAssetMismatch, "source holds %s, want %s", acct.Ticker, ticker)
	}
	if acct.Balance < amount {
		return SourceAccount{}, errors.Wrapf(errors.ErrInsufficientAmount, "source holds %d, want %d", acct.Balance, amount)
	}
	return SourceAccount{acct}, nil
}

// checkDepositCost ensures the depositor can pay the storage reserves of
// the record and the custody account. When the source is the native account
// itself it must cover both the reserves and the escrowed amount.
func checkDepositCost(db ledger.ReadOnlyKVStore, tokens token.Controller, depositor ledger.Address, src SourceAccount, amount, recordReserve uint64) error {
	reserve := recordReserve + tokens.AccountReserve()
	if reserve < recordReserve {
		return errors.Wrap(errors.ErrOverflow, "reserve")
	}
	if reserve == 0 {
		return nil
	}
	native, err := tokens.NativeAccount(db, depositor)
	if err != nil {
		return errors.Wrap(err, "native account")
	}
	need := reserve
	if native.Address.Equals(src.Address) {
		need += amount
		if need < amount {
			return errors.Wrap(errors.ErrOverflow, "deposit cost")
		}
	}
	if native.Balance < need {
		return errors.Wrapf(errors.ErrInsufficientAmount, "native account holds %d, want %d", native.Balance, need)
	}
	return nil
}

// loadRefundAtDeposit loads the refund destination declared by a deposit.
// It must be owned by the depositor.
func loadRefundAtDeposit(db ledger.ReadOnlyKVStore, tokens token.Controller, addr, depositor ledger.Address, ticker string) (RefundAccount, error) {
	acct, err := tokens.Account(db, addr)
	if err != nil {
		return RefundAccount{}, errors.Wrap(err, "refund destination")
	}
	if !acct.Owner.Equals(depositor) {
		return RefundAccount{}, errors.Wrap(ErrAccountMismatch, "refund destination is not owned by the depositor")
	}
	if acct.Ticker != ticker {
		return RefundAccount{}, errors.Wrapf(token.ErrAssetMismatch, "refund destination holds %s, want %s", acct.Ticker, ticker)
	}
	return RefundAccount{acct}, nil
}

func loadRefund(db ledger.ReadOnlyKVStore, tokens token.Controller, addr ledger.Address, e *Escrow) (RefundAccount, error) {
	if !addr.Equals(e.RefundDestination) {
		return RefundAccount{}, errors.Wrap(ErrAccountMismatch, "refund destination differs from the recorded one")
	}
	acct, err := tokens.Account(db, addr)
	if err != nil {
		return RefundAccount{}, errors.Wrap(err, "refund destination")
	}
	if acct.Ticker != e.Ticker {
		return RefundAccount{}, errors.Wrapf(token.ErrAssetMismatch, "refund destination holds %s, want %s", acct.Ticker, e.Ticker)
	}
	return RefundAccount{acct}, nil
}

func loadDestination(db ledger.ReadOnlyKVStore, tokens token.Controller, addr, counterparty ledger.Address, ticker string) (DestinationAccount, error) {
	acct, err := tokens.Account(db, addr)
	if err != nil {
		return DestinationAccount{}, errors.Wrap(err, "destination")
	}
	if !acct.Owner.Equals(counterparty) {
		return DestinationAccount{}, errors.Wrap(ErrAccountMismatch, "destination is not owned by the counterparty")
	}
	if acct.Ticker != ticker {
		return DestinationAccount{}, errors.Wrapf(token.ErrAssetMismatch, "destination holds %s, want %s", acct.Ticker, ticker)
	}
	return DestinationAccount{acct}, nil
}

func loadCustody(db ledger.ReadOnlyKVStore, tokens token.Controller, addr ledger.Address, e *Escrow, record ledger.Address) (CustodyAccount, error) {
	if !addr.Equals(e.Custody) {
		return CustodyAccount{}, errors.Wrap(ErrAccountMismatch, "custody differs from the recorded one")
	}
	acct, err := tokens.Account(db, addr)
	if err != nil {
		return CustodyAccount{}, errors.Wrap(err, "custody")
	}
	if !acct.Owner.Equals(record) {
		return CustodyAccount{}, errors.Wrap(ErrDerivation, "custody authority is not the escrow record")
	}
	if acct.Ticker != e.Ticker {
		return CustodyAccount{}, errors.Wrapf(token.ErrAssetMismatch, "custody holds %s, want %s", acct.Ticker, e.Ticker)
	}
	if acct.Balance < e.Amount {
		return CustodyAccount{}, errors.Wrapf(errors.ErrState, "custody holds %d, want at least %d", acct.Balance, e.Amount)
	}
	return CustodyAccount{acct}, nil
}
