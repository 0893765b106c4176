/*
Package utils contains decorators shared by all handlers of the ledger.
*/
package utils

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

// Recovery turns a panicking instruction into an ErrPanic failure of its
// transaction. The panic is logged together with the message path.
type Recovery struct{}

var _ ledger.Decorator = Recovery{}

// NewRecovery creates a Recovery decorator
func NewRecovery() Recovery {
	return Recovery{}
}

func (r Recovery) Check(ctx ledger.Context, store ledger.KVStore, tx ledger.Tx, next ledger.Checker) (_ *ledger.CheckResult, err error) {
	defer r.recover(ctx, tx, &err)
	return next.Check(ctx, store, tx)
}

func (r Recovery) Deliver(ctx ledger.Context, store ledger.KVStore, tx ledger.Tx, next ledger.Deliverer) (_ *ledger.DeliverResult, err error) {
	defer r.recover(ctx, tx, &err)
	return next.Deliver(ctx, store, tx)
}

// recover must be deferred directly.
func (Recovery) recover(ctx ledger.Context, tx ledger.Tx, err *error) {
	p := recover()
	if p == nil {
		return
	}
	path := ledger.GetPath(tx)
	*err = errors.Wrapf(errors.ErrPanic, "%s: %v", path, p)
	ledger.GetLogger(ctx).Error("recovered panic", "path", path, "panic", p)
}
