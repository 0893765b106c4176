package token

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

const (
	pathCreateAccountMsg = "token/create_account"
	pathTransferMsg      = "token/transfer"
)

// CreateAccountMsg opens the associated account of the owner for given
// asset. The owner pays the account reserve.
type CreateAccountMsg struct {
	Owner  ledger.Address `protobuf:"bytes,1,opt,name=owner,proto3" json:"owner"`
	Ticker string         `protobuf:"bytes,2,opt,name=ticker,proto3" json:"ticker"`
}

var _ ledger.Msg = (*CreateAccountMsg)(nil)

func (m *CreateAccountMsg) Reset()         { *m = CreateAccountMsg{} }
func (m *CreateAccountMsg) String() string { return proto.CompactTextString(m) }
func (*CreateAccountMsg) ProtoMessage()    {}

func (CreateAccountMsg) Path() string {
	return pathCreateAccountMsg
}

func (m *CreateAccountMsg) Validate() error {
	var errs error
	if err := m.Owner.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "owner"))
	}
	if !IsTicker(m.Ticker) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrInput, "invalid ticker %q", m.Ticker))
	}
	return errs
}

// TransferMsg moves funds between two accounts of the same asset.
type TransferMsg struct {
	Source      ledger.Address `protobuf:"bytes,1,opt,name=source,proto3" json:"source"`
	Destination ledger.Address `protobuf:"bytes,2,opt,name=destination,proto3" json:"destination"`
	Amount      uint64         `protobuf:"varint,3,opt,name=amount,proto3" json:"amount"`
}

var _ ledger.Msg = (*TransferMsg)(nil)

func (m *TransferMsg) Reset()         { *m = TransferMsg{} }
func (m *TransferMsg) String() string { return proto.CompactTextString(m) }
func (*TransferMsg) ProtoMessage()    {}

func (TransferMsg) Path() string {
	return pathTransferMsg
}

func (m *TransferMsg) Validate() error {
	var errs error
	if err := m.Source.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "source"))
	}
	if err := m.Destination.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "destination"))
	}
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	return errs
}
