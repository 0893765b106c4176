package escrow

import (
	"context"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/x"
)

type contextKey int // local to the escrow module

const (
	contextKeyEscrow contextKey = iota
)

// withEscrow is a private method, as only this module
// can add an escrow authority
func withEscrow(ctx ledger.Context, cond ledger.Condition) ledger.Context {
	return context.WithValue(ctx, contextKeyEscrow, cond)
}

// Authenticate implements x.Authenticator and provides
// authentication of the escrow record that is currently processed.
type Authenticate struct{}

var _ x.Authenticator = Authenticate{}

// GetConditions returns the escrow authority that authorized the current
// Context. May be nil
func (a Authenticate) GetConditions(ctx ledger.Context) []ledger.Condition {
	// (val, ok) form to return nil instead of panic if unset
	val, _ := ctx.Value(contextKeyEscrow).(ledger.Condition)
	if val == nil {
		return nil
	}
	return []ledger.Condition{val}
}

// HasAddress returns true if the given address
// is the escrow authority in the current Context.
func (a Authenticate) HasAddress(ctx ledger.Context, addr ledger.Address) bool {
	val, _ := ctx.Value(contextKeyEscrow).(ledger.Condition)
	return val != nil && val.Address().Equals(addr)
}
