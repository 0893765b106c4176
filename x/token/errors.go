package token

import (
	"github.com/iov-one/ledger/errors"
)

// ErrAssetMismatch is returned when an account holds another asset than the
// one an operation requires.
var ErrAssetMismatch = errors.Register(1100, "asset mismatch")
