package token

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const optKey = "token"

// GenesisAccount is used to parse the json from genesis file.
// Address is optional, when missing the associated address of the owner is
// used.
type GenesisAccount struct {
	Address ledger.Address `json:"address"`
	Owner   ledger.Address `json:"owner"`
	Ticker  string         `json:"ticker"`
	Balance uint64         `json:"balance"`
}

type genesis struct {
	Assets   []Asset          `json:"assets"`
	Accounts []GenesisAccount `json:"accounts"`
}

// Initializer fulfils the Initializer interface to load assets and funded
// accounts from the genesis file.
type Initializer struct{}

var _ ledger.Initializer = Initializer{}

// FromGenesis will parse initial asset and account info from genesis and
// save it to the database.
func (Initializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	var gen genesis
	if err := opts.ReadOptions(optKey, &gen); err != nil {
		return errors.Wrap(errors.ErrInput, err.Error())
	}

	assets := NewAssetBucket()
	for i := range gen.Assets {
		a := gen.Assets[i]
		if err := assets.Has(db, []byte(a.Ticker)); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "asset %s", a.Ticker)
		}
		if err := assets.Put(db, []byte(a.Ticker), &a); err != nil {
			return errors.Wrapf(err, "asset %q", a.Ticker)
		}
	}

	accounts := NewAccountBucket()
	for i, ga := range gen.Accounts {
		if err := assets.Has(db, []byte(ga.Ticker)); err != nil {
			return errors.Wrapf(err, "account %d asset %q", i, ga.Ticker)
		}
		addr := ga.Address
		if addr == nil {
			a, err := AssociatedAddress(ga.Owner, ga.Ticker)
			if err != nil {
				return errors.Wrapf(err, "account %d", i)
			}
			addr = a
		}
		acct := Account{
			Address: addr,
			Owner:   ga.Owner,
			Ticker:  ga.Ticker,
			Balance: ga.Balance,
		}
		if err := accounts.Has(db, addr); err == nil {
			return errors.Wrapf(errors.ErrDuplicate, "account %s", addr)
		}
		if err := accounts.Put(db, addr, &acct); err != nil {
			return errors.Wrapf(err, "account %d", i)
		}
	}
	return nil
}
