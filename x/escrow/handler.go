package escrow

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/orm"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/token"
)

const (
	// pay escrow cost up-front
	depositCost  int64 = 300
	releaseCost  int64 = 10
	cancelCost   int64 = 50
	withdrawCost int64 = 50
)

// RegisterRoutes will instantiate and register
// all handlers in this package
func RegisterRoutes(r ledger.Registry, auth x.Authenticator, tokens token.Controller, conf Configuration) {
	bucket := NewBucket()
	r.Handle(&DepositMsg{}, DepositHandler{auth: auth, bucket: bucket, tokens: tokens, conf: conf})
	r.Handle(&ReleaseMsg{}, ReleaseHandler{auth: auth, bucket: bucket})
	r.Handle(&CancelMsg{}, CancelHandler{auth: auth, bucket: bucket, tokens: tokens, conf: conf})
	r.Handle(&WithdrawMsg{}, WithdrawHandler{auth: auth, bucket: bucket, tokens: tokens, conf: conf})
}

// NewDepositMsg is a helper to build a deposit message with the derived
// record and custody addresses filled in.
func NewDepositMsg(conf Configuration, depositor, counterparty ledger.Address, ticker string, amount, nonce uint64, source ledger.Address) (*DepositMsg, error) {
	record, recordBump, err := RecordCondition(conf, depositor, nonce)
	if err != nil {
		return nil, errors.Wrap(err, "record")
	}
	custody, custodyBump, err := CustodyCondition(conf, depositor, nonce)
	if err != nil {
		return nil, errors.Wrap(err, "custody")
	}
	return &DepositMsg{
		Depositor:    depositor,
		Counterparty: counterparty,
		Ticker:       ticker,
		Amount:       amount,
		Nonce:        nonce,
		Source:       source,
		Record:       record.Address(),
		RecordBump:   uint32(recordBump),
		Custody:      custody.Address(),
		CustodyBump:  uint32(custodyBump),
	}, nil
}

// DepositHandler creates an escrow and moves the funds into custody.
type DepositHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	tokens token.Controller
	conf   Configuration
}

var _ ledger.Handler = DepositHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it.
func (h DepositHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: depositCost}, nil
}

// Deliver stores the escrow record, opens the custody account and moves the
// funds from the source into it.
func (h DepositHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, refund, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}

	escrow := &Escrow{
		Depositor:         msg.Depositor,
		Counterparty:      msg.Counterparty,
		Ticker:            msg.Ticker,
		RefundDestination: refund,
		Amount:            msg.Amount,
		Nonce:             msg.Nonce,
		RecordBump:        msg.RecordBump,
		CustodyBump:       msg.CustodyBump,
		Custody:           msg.Custody,
		Reserve:           h.conf.RecordReserve,
	}
	if err := h.tokens.ChargeReserve(ctx, db, msg.Depositor, h.conf.RecordReserve); err != nil {
		return nil, errors.Wrap(err, "record reserve")
	}
	if err := h.bucket.Put(db, msg.Record, escrow); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	// The authority of the custody account is the record and it is
	// never changed.
	if _, err := h.tokens.CreateAccount(ctx, db, msg.Depositor, msg.Custody, msg.Ticker, msg.Record); err != nil {
		return nil, errors.Wrap(err, "cannot create custody account")
	}
	if err := h.tokens.Transfer(ctx, db, msg.Source, msg.Custody, msg.Depositor, msg.Amount); err != nil {
		return nil, errors.Wrap(err, "cannot deposit")
	}

	ledger.GetLogger(ctx).Info("escrow deposited",
		"escrow", msg.Record,
		"depositor", msg.Depositor,
		"amount", msg.Amount,
		"ticker", msg.Ticker)
	return &ledger.DeliverResult{Data: msg.Record}, nil
}

// validate does all common pre-processing between Check and Deliver. It
// returns the refund destination to be recorded.
func (h DepositHandler) validate(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*DepositMsg, ledger.Address, error) {
	var msg DepositMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	if !h.auth.HasAddress(ctx, msg.Depositor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "depositor signature required")
	}
	if _, err := verifyCanonical(h.conf, recordSeed, msg.Depositor, msg.Nonce, msg.RecordBump, msg.Record); err != nil {
		return nil, nil, err
	}
	if _, err := verifyCanonical(h.conf, custodySeed, msg.Depositor, msg.Nonce, msg.CustodyBump, msg.Custody); err != nil {
		return nil, nil, err
	}
	switch err := h.bucket.Has(db, msg.Record); {
	case err == nil:
		return nil, nil, errors.Wrapf(errors.ErrDuplicate, "escrow with nonce %d", msg.Nonce)
	case !errors.ErrNotFound.Is(err):
		return nil, nil, err
	}

	switch _, err := h.tokens.Account(db, msg.Custody); {
	case err == nil:
		return nil, nil, errors.Wrap(errors.ErrDuplicate, "custody account exists")
	case !errors.ErrNotFound.Is(err):
		return nil, nil, err
	}

	src, err := loadSource(db, h.tokens, msg.Source, msg.Depositor, msg.Ticker, msg.Amount)
	if err != nil {
		return nil, nil, err
	}
	if err := checkDepositCost(db, h.tokens, msg.Depositor, src, msg.Amount, h.conf.RecordReserve); err != nil {
		return nil, nil, err
	}
	refund := msg.Source
	if msg.RefundDestination != nil {
		if _, err := loadRefundAtDeposit(db, h.tokens, msg.RefundDestination, msg.Depositor, msg.Ticker); err != nil {
			return nil, nil, err
		}
		refund = msg.RefundDestination
	}
	if msg.CounterpartyDestination != nil {
		if _, err := loadDestination(db, h.tokens, msg.CounterpartyDestination, msg.Counterparty, msg.Ticker); err != nil {
			return nil, nil, errors.Wrap(err, "counterparty")
		}
	}
	return &msg, refund, nil
}

// ReleaseHandler flags an escrow as released.
type ReleaseHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
}

var _ ledger.Handler = ReleaseHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h ReleaseHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: releaseCost}, nil
}

// Deliver sets the released flag. Releasing a released escrow does nothing.
func (h ReleaseHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	msg, escrow, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if escrow.Released {
		return &ledger.DeliverResult{Log: "already released"}, nil
	}
	escrow.Released = true
	if err := h.bucket.Put(db, msg.Record, escrow); err != nil {
		return nil, errors.Wrap(err, "cannot store escrow")
	}
	ledger.GetLogger(ctx).Info("escrow released", "escrow", msg.Record)
	return &ledger.DeliverResult{}, nil
}

func (h ReleaseHandler) validate(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ReleaseMsg, *Escrow, error) {
	var msg ReleaseMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, nil, errors.Wrap(err, "load msg")
	}
	var escrow Escrow
	if err := h.bucket.One(db, msg.Record, &escrow); err != nil {
		return nil, nil, errors.Wrap(err, "cannot load escrow from the store")
	}
	if !h.auth.HasAddress(ctx, msg.Depositor) {
		return nil, nil, errors.Wrap(errors.ErrUnauthorized, "depositor signature required")
	}
	if !escrow.Depositor.Equals(msg.Depositor) {
		return nil, nil, errors.Wrap(ErrAccountMismatch, "escrow belongs to another depositor")
	}
	return &msg, &escrow, nil
}

// CancelHandler returns the funds of an unreleased escrow and closes it.
type CancelHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	tokens token.Controller
	conf   Configuration
}

var _ ledger.Handler = CancelHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h CancelHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: cancelCost}, nil
}

// Deliver moves all custody funds to the refund destination and closes the
// escrow.
func (h CancelHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	c, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := closeEscrow(ctx, db, h.bucket, h.tokens, c, c.refund.Address); err != nil {
		return nil, err
	}
	ledger.GetLogger(ctx).Info("escrow cancelled", "escrow", c.key, "amount", c.custody.Balance)
	return &ledger.DeliverResult{}, nil
}

func (h CancelHandler) validate(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*closing, error) {
	var msg CancelMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var escrow Escrow
	if err := h.bucket.One(db, msg.Record, &escrow); err != nil {
		return nil, errors.Wrap(err, "cannot load escrow from the store")
	}
	if !h.auth.HasAddress(ctx, msg.Depositor) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "depositor signature required")
	}
	if !escrow.Depositor.Equals(msg.Depositor) {
		return nil, errors.Wrap(ErrAccountMismatch, "escrow belongs to another depositor")
	}
	if escrow.Released {
		return nil, errors.Wrap(ErrAlreadyReleased, "only the counterparty can withdraw")
	}
	refund, err := loadRefund(db, h.tokens, msg.RefundDestination, &escrow)
	if err != nil {
		return nil, err
	}
	authority, err := recordAuthority(h.conf, &escrow, msg.Record)
	if err != nil {
		return nil, err
	}
	custody, err := loadCustody(db, h.tokens, msg.Custody, &escrow, msg.Record)
	if err != nil {
		return nil, err
	}
	return &closing{
		key:       msg.Record,
		escrow:    &escrow,
		authority: authority,
		custody:   custody,
		refund:    refund,
	}, nil
}

// WithdrawHandler moves the funds of a released escrow to the counterparty
// and closes it.
type WithdrawHandler struct {
	auth   x.Authenticator
	bucket orm.ModelBucket
	tokens token.Controller
	conf   Configuration
}

var _ ledger.Handler = WithdrawHandler{}

// Check just verifies it is properly formed and returns
// the cost of executing it
func (h WithdrawHandler) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	if _, err := h.validate(ctx, db, tx); err != nil {
		return nil, err
	}
	return &ledger.CheckResult{GasAllocated: withdrawCost}, nil
}

// Deliver moves all custody funds to the destination and closes the escrow.
func (h WithdrawHandler) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	c, err := h.validate(ctx, db, tx)
	if err != nil {
		return nil, err
	}
	if err := closeEscrow(ctx, db, h.bucket, h.tokens, c, c.destination.Address); err != nil {
		return nil, err
	}
	ledger.GetLogger(ctx).Info("escrow withdrawn", "escrow", c.key, "amount", c.custody.Balance)
	return &ledger.DeliverResult{}, nil
}

func (h WithdrawHandler) validate(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*closing, error) {
	var msg WithdrawMsg
	if err := ledger.LoadMsg(tx, &msg); err != nil {
		return nil, errors.Wrap(err, "load msg")
	}
	var escrow Escrow
	if err := h.bucket.One(db, msg.Record, &escrow); err != nil {
		return nil, errors.Wrap(err, "cannot load escrow from the store")
	}
	if !h.auth.HasAddress(ctx, msg.Counterparty) {
		return nil, errors.Wrap(errors.ErrUnauthorized, "counterparty signature required")
	}
	if !escrow.Counterparty.Equals(msg.Counterparty) {
		return nil, errors.Wrap(ErrAccountMismatch, "escrow is for another counterparty")
	}
	if !escrow.Depositor.Equals(msg.Depositor) {
		return nil, errors.Wrap(ErrAccountMismatch, "escrow belongs to another depositor")
	}
	if !escrow.Released {
		return nil, errors.Wrap(ErrNotReleased, "depositor has not released the funds")
	}
	dest, err := loadDestination(db, h.tokens, msg.Destination, escrow.Counterparty, escrow.Ticker)
	if err != nil {
		return nil, err
	}
	authority, err := recordAuthority(h.conf, &escrow, msg.Record)
	if err != nil {
		return nil, err
	}
	custody, err := loadCustody(db, h.tokens, msg.Custody, &escrow, msg.Record)
	if err != nil {
		return nil, err
	}
	return &closing{
		key:         msg.Record,
		escrow:      &escrow,
		authority:   authority,
		custody:     custody,
		destination: dest,
	}, nil
}

// closing is a fully validated request to terminate an escrow.
type closing struct {
	key         ledger.Address
	escrow      *Escrow
	authority   ledger.Condition
	custody     CustodyAccount
	refund      RefundAccount
	destination DestinationAccount
}

// closeEscrow empties the custody account into the receiver, closes it and
// deletes the record. Storage reserves go back to the depositor.
func closeEscrow(ctx ledger.Context, db ledger.KVStore, bucket orm.ModelBucket, tokens token.Controller, c *closing, receiver ledger.Address) error {
	ctx = withEscrow(ctx, c.authority)
	record := c.authority.Address()

	if err := tokens.Transfer(ctx, db, c.custody.Address, receiver, record, c.custody.Balance); err != nil {
		return errors.Wrap(err, "cannot empty custody")
	}
	if err := tokens.Close(ctx, db, c.custody.Address, c.escrow.Depositor, record); err != nil {
		return errors.Wrap(err, "cannot close custody")
	}
	if err := bucket.Delete(db, c.key); err != nil {
		return errors.Wrap(err, "cannot delete escrow")
	}
	if err := tokens.RefundReserve(db, c.escrow.Depositor, c.escrow.Reserve); err != nil {
		return errors.Wrap(err, "cannot refund record reserve")
	}
	return nil
}
