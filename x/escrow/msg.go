package escrow

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/token"
)

const (
	pathDepositMsg  = "escrow/deposit"
	pathReleaseMsg  = "escrow/release"
	pathCancelMsg   = "escrow/cancel"
	pathWithdrawMsg = "escrow/withdraw"
)

var _ ledger.Msg = (*DepositMsg)(nil)
var _ ledger.Msg = (*ReleaseMsg)(nil)
var _ ledger.Msg = (*CancelMsg)(nil)
var _ ledger.Msg = (*WithdrawMsg)(nil)

// DepositMsg locks funds of the depositor for the counterparty.
type DepositMsg struct {
	Depositor    ledger.Address `protobuf:"bytes,1,opt,name=depositor,proto3" json:"depositor"`
	Counterparty ledger.Address `protobuf:"bytes,2,opt,name=counterparty,proto3" json:"counterparty"`
	Ticker       string         `protobuf:"bytes,3,opt,name=ticker,proto3" json:"ticker"`
	Amount       uint64         `protobuf:"varint,4,opt,name=amount,proto3" json:"amount"`
	Nonce        uint64         `protobuf:"varint,5,opt,name=nonce,proto3" json:"nonce"`
	Source       ledger.Address `protobuf:"bytes,6,opt,name=source,proto3" json:"source"`
	// RefundDestination defaults to the source account.
	RefundDestination ledger.Address `protobuf:"bytes,7,opt,name=refund_destination,proto3" json:"refund_destination,omitempty"`
	// CounterpartyDestination is optional. When set, it must be an
	// account of the counterparty holding the escrowed asset.
	CounterpartyDestination ledger.Address `protobuf:"bytes,8,opt,name=counterparty_destination,proto3" json:"counterparty_destination,omitempty"`
	Record                  ledger.Address `protobuf:"bytes,9,opt,name=record,proto3" json:"record"`
	RecordBump              uint32         `protobuf:"varint,10,opt,name=record_bump,proto3" json:"record_bump"`
	Custody                 ledger.Address `protobuf:"bytes,11,opt,name=custody,proto3" json:"custody"`
	CustodyBump             uint32         `protobuf:"varint,12,opt,name=custody_bump,proto3" json:"custody_bump"`
}

func (m *DepositMsg) Reset()         { *m = DepositMsg{} }
func (m *DepositMsg) String() string { return proto.CompactTextString(m) }
func (*DepositMsg) ProtoMessage()    {}

// Path fulfills ledger.Msg interface to allow routing
func (DepositMsg) Path() string {
	return pathDepositMsg
}

// Validate makes sure that this is sensible
func (m *DepositMsg) Validate() error {
	var errs error
	if err := m.Depositor.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "depositor"))
	}
	if err := m.Counterparty.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "counterparty"))
	}
	if m.Depositor.Equals(m.Counterparty) {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "depositor and counterparty must differ"))
	}
	if !token.IsTicker(m.Ticker) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrInput, "invalid ticker %q", m.Ticker))
	}
	if m.Amount == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	if err := m.Source.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "source"))
	}
	if m.RefundDestination != nil {
		if err := m.RefundDestination.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrap(err, "refund destination"))
		}
	}
	if m.CounterpartyDestination != nil {
		if err := m.CounterpartyDestination.Validate(); err != nil {
			errs = errors.Append(errs, errors.Wrap(err, "counterparty destination"))
		}
	}
	if err := m.Record.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "record"))
	}
	if err := m.Custody.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "custody"))
	}
	if m.RecordBump > math.MaxUint8 || m.CustodyBump > math.MaxUint8 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrInput, "bump out of range"))
	}
	return errs
}

// ReleaseMsg allows the counterparty to withdraw the funds.
type ReleaseMsg struct {
	Depositor ledger.Address `protobuf:"bytes,1,opt,name=depositor,proto3" json:"depositor"`
	Record    ledger.Address `protobuf:"bytes,2,opt,name=record,proto3" json:"record"`
}

func (m *ReleaseMsg) Reset()         { *m = ReleaseMsg{} }
func (m *ReleaseMsg) String() string { return proto.CompactTextString(m) }
func (*ReleaseMsg) ProtoMessage()    {}

// Path fulfills ledger.Msg interface to allow routing
func (ReleaseMsg) Path() string {
	return pathReleaseMsg
}

// Validate makes sure that this is sensible
func (m *ReleaseMsg) Validate() error {
	var errs error
	if err := m.Depositor.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "depositor"))
	}
	if err := m.Record.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "record"))
	}
	return errs
}

// CancelMsg returns the funds of an unreleased escrow to the depositor.
type CancelMsg struct {
	Depositor         ledger.Address `protobuf:"bytes,1,opt,name=depositor,proto3" json:"depositor"`
	RefundDestination ledger.Address `protobuf:"bytes,2,opt,name=refund_destination,proto3" json:"refund_destination"`
	Custody           ledger.Address `protobuf:"bytes,3,opt,name=custody,proto3" json:"custody"`
	Record            ledger.Address `protobuf:"bytes,4,opt,name=record,proto3" json:"record"`
}

func (m *CancelMsg) Reset()         { *m = CancelMsg{} }
func (m *CancelMsg) String() string { return proto.CompactTextString(m) }
func (*CancelMsg) ProtoMessage()    {}

// Path fulfills ledger.Msg interface to allow routing
func (CancelMsg) Path() string {
	return pathCancelMsg
}

// Validate makes sure that this is sensible
func (m *CancelMsg) Validate() error {
	var errs error
	if err := m.Depositor.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "depositor"))
	}
	if err := m.RefundDestination.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "refund destination"))
	}
	if err := m.Custody.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "custody"))
	}
	if err := m.Record.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "record"))
	}
	return errs
}

// WithdrawMsg moves the funds of a released escrow to the counterparty.
type WithdrawMsg struct {
	Depositor    ledger.Address `protobuf:"bytes,1,opt,name=depositor,proto3" json:"depositor"`
	Counterparty ledger.Address `protobuf:"bytes,2,opt,name=counterparty,proto3" json:"counterparty"`
	Destination  ledger.Address `protobuf:"bytes,3,opt,name=destination,proto3" json:"destination"`
	Custody      ledger.Address `protobuf:"bytes,4,opt,name=custody,proto3" json:"custody"`
	Record       ledger.Address `protobuf:"bytes,5,opt,name=record,proto3" json:"record"`
}

func (m *WithdrawMsg) Reset()         { *m = WithdrawMsg{} }
func (m *WithdrawMsg) String() string { return proto.CompactTextString(m) }
func (*WithdrawMsg) ProtoMessage()    {}

// Path fulfills ledger.Msg interface to allow routing
func (WithdrawMsg) Path() string {
	return pathWithdrawMsg
}

// Validate makes sure that this is sensible
func (m *WithdrawMsg) Validate() error {
	var errs error
	if err := m.Depositor.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "depositor"))
	}
	if err := m.Counterparty.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "counterparty"))
	}
	if err := m.Destination.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "destination"))
	}
	if err := m.Custody.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "custody"))
	}
	if err := m.Record.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "record"))
	}
	return errs
}
