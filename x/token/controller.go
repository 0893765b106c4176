package token

import (
	"math"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x"
)

// Controller is the interface other extensions use to operate on accounts.
type Controller interface {
	// CreateAccount stores a new empty account at given address. The
	// account reserve is charged from the payer's native account.
	CreateAccount(ctx ledger.Context, db ledger.KVStore, payer, addr ledger.Address, ticker string, authority ledger.Address) (*Account, error)

	// Transfer moves amount from one account to another. The authority
	// must own the source account and be authenticated.
	Transfer(ctx ledger.Context, db ledger.KVStore, from, to, authority ledger.Address, amount uint64) error

	// Close deletes an empty account and refunds its reserve to the
	// native account of the destination.
	Close(ctx ledger.Context, db ledger.KVStore, account, destination, authority ledger.Address) error

	// ChargeReserve takes amount of the native asset from the payer's
	// native account. The payer must be authenticated.
	ChargeReserve(ctx ledger.Context, db ledger.KVStore, payer ledger.Address, amount uint64) error

	// RefundReserve returns amount of the native asset to the
	// destination's native account, creating it if needed.
	RefundReserve(db ledger.KVStore, destination ledger.Address, amount uint64) error

	// NativeAccount returns the account the reserves of the owner are paid
	// from.
	NativeAccount(db ledger.ReadOnlyKVStore, owner ledger.Address) (*Account, error)

	// AccountReserve is the native amount CreateAccount charges.
	AccountReserve() uint64

	Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error)
	Account(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Account, error)
	Asset(db ledger.ReadOnlyKVStore, ticker string) (*Asset, error)
}

// BaseController is the default Controller implementation.
type BaseController struct {
	auth     x.Authenticator
	conf     Configuration
	assets   orm.ModelBucket
	accounts orm.ModelBucket
}

var _ Controller = BaseController{}

// NewController returns a controller authorizing account operations with
// given authenticator.
func NewController(auth x.Authenticator, conf Configuration) BaseController {
	return BaseController{
		auth:     auth,
		conf:     conf,
		assets:   NewAssetBucket(),
		accounts: NewAccountBucket(),
	}
}

func (c BaseController) Asset(db ledger.ReadOnlyKVStore, ticker string) (*Asset, error) {
	var a Asset
	if err := c.assets.One(db, []byte(ticker), &a); err != nil {
		return nil, errors.Wrapf(err, "asset %s", ticker)
	}
	return &a, nil
}

func (c BaseController) Account(db ledger.ReadOnlyKVStore, addr ledger.Address) (*Account, error) {
	var a Account
	if err := c.accounts.One(db, addr, &a); err != nil {
		return nil, errors.Wrapf(err, "account %s", addr)
	}
	return &a, nil
}

func (c BaseController) NativeAccount(db ledger.ReadOnlyKVStore, owner ledger.Address) (*Account, error) {
	addr, err := AssociatedAddress(owner, c.conf.NativeTicker)
	if err != nil {
		return nil, err
	}
	return c.Account(db, addr)
}

func (c BaseController) AccountReserve() uint64 {
	return c.conf.AccountReserve
}

func (c BaseController) Balance(db ledger.ReadOnlyKVStore, addr ledger.Address) (uint64, error) {
	a, err := c.Account(db, addr)
	if err != nil {
		return 0, err
	}
	return a.Balance, nil
}

// ByOwner returns all accounts controlled by given authority.
func (c BaseController) ByOwner(db ledger.ReadOnlyKVStore, owner ledger.Address) ([]*Account, error) {
	var accounts []*Account
	if _, err := c.accounts.ByIndex(db, "owner", owner, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (c BaseController) CreateAccount(ctx ledger.Context, db ledger.KVStore, payer, addr ledger.Address, ticker string, authority ledger.Address) (*Account, error) {
	if _, err := c.Asset(db, ticker); err != nil {
		return nil, err
	}
	switch err := c.accounts.Has(db, addr); {
	case err == nil:
		return nil, errors.Wrapf(errors.ErrDuplicate, "account %s", addr)
	case !errors.ErrNotFound.Is(err):
		return nil, err
	}
	if err := c.ChargeReserve(ctx, db, payer, c.conf.AccountReserve); err != nil {
		return nil, errors.Wrap(err, "account reserve")
	}
	acct := &Account{
		Address: addr,
		Owner:   authority,
		Ticker:  ticker,
		Reserve: c.conf.AccountReserve,
	}
	if err := c.accounts.Put(db, addr, acct); err != nil {
		return nil, errors.Wrap(err, "cannot store account")
	}
	return acct, nil
}

// authorized loads the account and ensures the authority both owns it and is
// authenticated in the context.
func (c BaseController) authorized(ctx ledger.Context, db ledger.ReadOnlyKVStore, addr, authority ledger.Address) (*Account, error) {
	acct, err := c.Account(db, addr)
	if err != nil {
		return nil, err
	}
	if !acct.Owner.Equals(authority) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s is not the owner of %s", authority, addr)
	}
	if !c.auth.HasAddress(ctx, authority) {
		return nil, errors.Wrapf(errors.ErrUnauthorized, "%s did not sign", authority)
	}
	return acct, nil
}

func (c BaseController) Transfer(ctx ledger.Context, db ledger.KVStore, from, to, authority ledger.Address, amount uint64) error {
	if amount == 0 {
		return errors.Wrap(errors.ErrAmount, "transfer must be positive")
	}
	if from.Equals(to) {
		return errors.Wrap(errors.ErrInput, "source and destination are the same account")
	}
	src, err := c.authorized(ctx, db, from, authority)
	if err != nil {
		return errors.Wrap(err, "source")
	}
	dst, err := c.Account(db, to)
	if err != nil {
		return errors.Wrap(err, "destination")
	}
	if src.Ticker != dst.Ticker {
		return errors.Wrapf(ErrAssetMismatch, "cannot move %s into %s account", src.Ticker, dst.Ticker)
	}
	if src.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "balance %d, want %d", src.Balance, amount)
	}
	if dst.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "destination balance")
	}
	src.Balance -= amount
	dst.Balance += amount
	if err := c.accounts.Put(db, src.Address, src); err != nil {
		return errors.Wrap(err, "cannot store source")
	}
	if err := c.accounts.Put(db, dst.Address, dst); err != nil {
		return errors.Wrap(err, "cannot store destination")
	}
	return nil
}

func (c BaseController) Close(ctx ledger.Context, db ledger.KVStore, account, destination, authority ledger.Address) error {
	acct, err := c.authorized(ctx, db, account, authority)
	if err != nil {
		return err
	}
	if acct.Balance != 0 {
		return errors.Wrapf(errors.ErrState, "account holds %d %s", acct.Balance, acct.Ticker)
	}
	if err := c.accounts.Delete(db, account); err != nil {
		return errors.Wrap(err, "cannot delete account")
	}
	return c.RefundReserve(db, destination, acct.Reserve)
}

func (c BaseController) ChargeReserve(ctx ledger.Context, db ledger.KVStore, payer ledger.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	if !c.auth.HasAddress(ctx, payer) {
		return errors.Wrapf(errors.ErrUnauthorized, "payer %s did not sign", payer)
	}
	acct, err := c.NativeAccount(db, payer)
	if err != nil {
		return errors.Wrap(err, "native account")
	}
	if acct.Balance < amount {
		return errors.Wrapf(errors.ErrInsufficientAmount, "reserve of %d %s", amount, c.conf.NativeTicker)
	}
	acct.Balance -= amount
	return c.accounts.Put(db, acct.Address, acct)
}

func (c BaseController) RefundReserve(db ledger.KVStore, destination ledger.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	addr, err := AssociatedAddress(destination, c.conf.NativeTicker)
	if err != nil {
		return err
	}
	var acct Account
	switch err := c.accounts.One(db, addr, &acct); {
	case err == nil:
	case errors.ErrNotFound.Is(err):
		acct = Account{Address: addr, Owner: destination, Ticker: c.conf.NativeTicker}
	default:
		return err
	}
	if acct.Balance > math.MaxUint64-amount {
		return errors.Wrap(errors.ErrOverflow, "native balance")
	}
	acct.Balance += amount
	return c.accounts.Put(db, addr, &acct)
}
