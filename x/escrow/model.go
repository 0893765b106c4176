package escrow

import (
	"math"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x/token"
)

// Escrow is the record of a single escrow. It is stored under the address
// of the record condition.
type Escrow struct {
	Depositor    ledger.Address `protobuf:"bytes,1,opt,name=depositor,proto3" json:"depositor"`
	Counterparty ledger.Address `protobuf:"bytes,2,opt,name=counterparty,proto3" json:"counterparty"`
	Ticker       string         `protobuf:"bytes,3,opt,name=ticker,proto3" json:"ticker"`
	// RefundDestination is the account that receives the funds if the
	// escrow is cancelled. It is fixed at deposit.
	RefundDestination ledger.Address `protobuf:"bytes,4,opt,name=refund_destination,proto3" json:"refund_destination"`
	Amount            uint64         `protobuf:"varint,5,opt,name=amount,proto3" json:"amount"`
	Nonce             uint64         `protobuf:"varint,6,opt,name=nonce,proto3" json:"nonce"`
	// RecordBump and CustodyBump are the derivation proofs of the record
	// and custody addresses.
	RecordBump  uint32         `protobuf:"varint,7,opt,name=record_bump,proto3" json:"record_bump"`
	CustodyBump uint32         `protobuf:"varint,8,opt,name=custody_bump,proto3" json:"custody_bump"`
	Custody     ledger.Address `protobuf:"bytes,9,opt,name=custody,proto3" json:"custody"`
	Released    bool           `protobuf:"varint,10,opt,name=released,proto3" json:"released"`
	// Reserve is the amount of the native asset paid for this record.
	Reserve uint64 `protobuf:"varint,11,opt,name=reserve,proto3" json:"reserve"`
}

func (e *Escrow) Reset()         { *e = Escrow{} }
func (e *Escrow) String() string { return proto.CompactTextString(e) }
func (*Escrow) ProtoMessage()    {}

// Validate ensures the escrow is valid
func (e *Escrow) Validate() error {
	var errs error
	if err := e.Depositor.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "depositor"))
	}
	if err := e.Counterparty.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "counterparty"))
	}
	if !token.IsTicker(e.Ticker) {
		errs = errors.Append(errs, errors.Wrapf(errors.ErrModel, "invalid ticker %q", e.Ticker))
	}
	if err := e.RefundDestination.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "refund destination"))
	}
	if e.Amount == 0 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrAmount, "must be positive"))
	}
	if e.RecordBump > math.MaxUint8 || e.CustodyBump > math.MaxUint8 {
		errs = errors.Append(errs, errors.Wrap(errors.ErrModel, "bump out of range"))
	}
	if err := e.Custody.Validate(); err != nil {
		errs = errors.Append(errs, errors.Wrap(err, "custody"))
	}
	return errs
}

// NewBucket returns a bucket for storing escrow records, indexed by the
// depositor and the counterparty.
func NewBucket() orm.ModelBucket {
	return orm.NewModelBucket("esc", &Escrow{},
		orm.WithIndex("depositor", depositorIndexer),
		orm.WithIndex("counterparty", counterpartyIndexer),
	)
}

func depositorIndexer(m orm.Model) ([]byte, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return e.Depositor, nil
}

func counterpartyIndexer(m orm.Model) ([]byte, error) {
	e, ok := m.(*Escrow)
	if !ok {
		return nil, errors.Wrapf(errors.ErrType, "%T", m)
	}
	return e.Counterparty, nil
}

// ByDepositor returns all open escrows created by given depositor, keyed by
// their record address.
func ByDepositor(db ledger.ReadOnlyKVStore, depositor ledger.Address) ([]ledger.Address, []*Escrow, error) {
	return byIndex(db, "depositor", depositor)
}

// ByCounterparty returns all open escrows created for given counterparty,
// keyed by their record address.
func ByCounterparty(db ledger.ReadOnlyKVStore, counterparty ledger.Address) ([]ledger.Address, []*Escrow, error) {
	return byIndex(db, "counterparty", counterparty)
}

func byIndex(db ledger.ReadOnlyKVStore, index string, addr ledger.Address) ([]ledger.Address, []*Escrow, error) {
	var escrows []*Escrow
	keys, err := NewBucket().ByIndex(db, index, addr, &escrows)
	if err != nil {
		return nil, nil, err
	}
	addrs := make([]ledger.Address, len(keys))
	for i, k := range keys {
		addrs[i] = k
	}
	return addrs, escrows, nil
}
