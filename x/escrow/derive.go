package escrow

import (
	"encoding/binary"
	"math"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
)

var (
	recordSeed  = []byte("record")
	custodySeed = []byte("custody")
)

func seeds(kind []byte, depositor ledger.Address, nonce uint64) [][]byte {
	n := make([]byte, 8)
	binary.BigEndian.PutUint64(n, nonce)
	return [][]byte{kind, depositor, n}
}

// RecordCondition returns the condition of the escrow record created by the
// depositor with given nonce, together with its canonical bump. The address
// of this condition is the record key and the custody authority.
func RecordCondition(conf Configuration, depositor ledger.Address, nonce uint64) (ledger.Condition, uint8, error) {
	return ledger.Derive(conf.DomainTag, seeds(recordSeed, depositor, nonce)...)
}

// CustodyCondition returns the condition of the custody account of the
// escrow created by the depositor with given nonce, together with its
// canonical bump.
func CustodyCondition(conf Configuration, depositor ledger.Address, nonce uint64) (ledger.Condition, uint8, error) {
	return ledger.Derive(conf.DomainTag, seeds(custodySeed, depositor, nonce)...)
}

// verifyCanonical reconstructs a derived condition from a client provided
// bump. Only the canonical bump is accepted, so that a single address
// exists for every depositor and nonce pair.
func verifyCanonical(conf Configuration, kind []byte, depositor ledger.Address, nonce uint64, bump uint32, addr ledger.Address) (ledger.Condition, error) {
	if bump > math.MaxUint8 {
		return nil, errors.Wrapf(ErrDerivation, "bump %d out of range", bump)
	}
	s := seeds(kind, depositor, nonce)
	cond, canonical, err := ledger.Derive(conf.DomainTag, s...)
	if err != nil {
		return nil, errors.Wrap(ErrDerivation, err.Error())
	}
	if uint32(canonical) != bump {
		return nil, errors.Wrapf(ErrDerivation, "%s bump %d is not canonical", kind, bump)
	}
	if !cond.Address().Equals(addr) {
		return nil, errors.Wrapf(ErrDerivation, "%s address %s", kind, addr)
	}
	return cond, nil
}

// recordAuthority rebuilds the record condition from the proof stored in the
// record. It fails if the stored proof does not lead back to the record key.
func recordAuthority(conf Configuration, e *Escrow, key ledger.Address) (ledger.Condition, error) {
	if e.RecordBump > math.MaxUint8 {
		return nil, errors.Wrapf(ErrDerivation, "bump %d out of range", e.RecordBump)
	}
	cond, err := ledger.DeriveWithBump(conf.DomainTag, uint8(e.RecordBump), seeds(recordSeed, e.Depositor, e.Nonce)...)
	if err != nil {
		return nil, errors.Wrap(ErrDerivation, err.Error())
	}
	if !cond.Address().Equals(key) {
		return nil, errors.Wrap(ErrDerivation, "record authority")
	}
	if !ledger.VerifyDerivation(e.Custody, conf.DomainTag, uint8(e.CustodyBump), seeds(custodySeed, e.Depositor, e.Nonce)...) {
		return nil, errors.Wrap(ErrDerivation, "custody account")
	}
	return cond, nil
}
