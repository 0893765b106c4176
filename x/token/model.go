package token

import (
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
)

// IsTicker returns true if given string is a valid asset ticker.
var IsTicker = regexp.MustCompile(`^[A-Z][A-Z0-9]{0,7}$`).MatchString

var isAssetName = regexp.MustCompile(`^[A-Za-z0-9 \-_:]{0,32}$`).MatchString

// Asset describes a fungible asset that accounts can hold.
type Asset struct {
	Ticker string `protobuf:"bytes,1,opt,name=ticker,proto3" json:"ticker"`
	Name   string `protobuf:"bytes,2,opt,name=name,proto3" json:"name,omitempty"`
}

func (a *Asset) Reset()         { *a = Asset{} }
func (a *Asset) String() string { return proto.CompactTextString(a) }
func (*Asset) ProtoMessage()    {}

// Validate ensures the asset is valid.
func (a *Asset) Validate() error {
	var errs error
	if !IsTicker(a.Ticker) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrModel, "invalid ticker %q", a.Ticker))
	}
	if !isAssetName(a.Name) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrModel, "invalid name %q", a.Name))
	}
	return errs
}

// Account holds a balance of a single asset.
type Account struct {
	// Address is the primary key of the account.
	Address ledger.Address `protobuf:"bytes,1,opt,name=address,proto3" json:"address"`
	// Owner is the authority that can move the funds and close the account.
	Owner  ledger.Address `protobuf:"bytes,2,opt,name=owner,proto3" json:"owner"`
	Ticker string         `protobuf:"bytes,3,opt,name=ticker,proto3" json:"ticker"`
	// Balance is expressed in the smallest unit of the asset.
	Balance uint64 `protobuf:"varint,4,opt,name=balance,proto3" json:"balance"`
	// Reserve is the amount of the native asset paid for keeping this
	// account in the store. It is refunded when the account is closed.
	Reserve uint64 `protobuf:"varint,5,opt,name=reserve,proto3" json:"reserve"`
}

func (a *Account) Reset()         { *a = Account{} }
func (a *Account) String() string { return proto.CompactTextString(a) }
func (*Account) ProtoMessage()    {}

// Validate ensures the account is valid.
func (a *Account) Validate() error {
	var errs error
	if err := a.Address.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "address"))
	}
	if err := a.Owner.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "owner"))
	}
	if !IsTicker(a.Ticker) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrModel, "invalid ticker %q", a.Ticker))
	}
	return errs
}

// NewAssetBucket returns a bucket for storing assets, keyed by their ticker.
func NewAssetBucket() orm.ModelBucket {
	return orm.NewModelBucket("asset", &Asset{})
}

// NewAccountBucket returns a bucket for storing accounts, keyed by their
// address and indexed by the owner.
func NewAccountBucket() orm.ModelBucket {
	return orm.NewModelBucket("tokacc", &Account{},
		orm.WithIndex("owner", accountOwnerIndexer))
}

func accountOwnerIndexer(m orm.Model) ([]byte, error) {
	a, ok := m.(*Account)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return a.Owner, nil
}

// AssociatedAddress returns the address of the account that holds given
// asset on behalf of the owner.
func AssociatedAddress(owner ledger.Address, ticker string) (ledger.Address, error) {
	if err := owner.Validate(); err != nil {
		return nil, errors.Wrap(err, "owner")
	}
	if !IsTicker(ticker) {
		return nil, errors.Wrapf(errors.ErrInput, "invalid ticker %q", ticker)
	}
	c, _, err := ledger.Derive("token", owner, []byte(ticker))
	if err != nil {
		return nil, errors.Wrap(err, "derive")
	}
	return c.Address(), nil
}
