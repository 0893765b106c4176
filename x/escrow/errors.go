package escrow

import (
	"github.com/iov-one/ledger/errors"
)

// escrow takes 1010-1019
var (
	ErrAlreadyReleased = errors.Register(1010, "escrow already released")
	ErrNotReleased     = errors.Register(1011, "escrow not released")
	ErrDerivation      = errors.Register(1012, "derivation mismatch")
	ErrAccountMismatch = errors.Register(1013, "account mismatch")
)
