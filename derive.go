package ledger

import (
	"crypto/sha256"

	"filippo.io/edwards25519"
	"github.com/iov-one/ledger/errors"
)

const (
	// DerivedType is the condition type of every derived authority.
	DerivedType = "pda"

	// MaxSeeds is the maximum number of seeds a derivation accepts.
	MaxSeeds = 16

	// MaxSeedLength is the maximum length of a single seed.
	MaxSeedLength = 32
)

// Derive computes a condition that is controlled only by code knowing the
// domain and the seeds. It searches the bump space from 255 down and returns
// the first candidate whose digest is not a valid ed25519 public key. The
// returned bump is the canonical proof, DeriveWithBump reconstructs the same
// condition from it.
//
// Key holders are addressed by sha256("sigs/ed25519/"+pubkey), so the bump
// does not guard derived addresses against signers. It keeps the condition
// digest itself from being usable as a public key by any scheme that takes
// it verbatim.
func Derive(domain string, seeds ...[]byte) (Condition, uint8, error) {
	if err := validateSeeds(seeds); err != nil {
		return nil, 0, err
	}
	for bump := 255; bump >= 0; bump-- {
		c := derivedCondition(domain, uint8(bump), seeds)
		if err := c.Validate(); err != nil {
			return nil, 0, errors.Wrapf(err, "domain %q", domain)
		}
		if !isOnCurve(sha256.Sum256(c)) {
			return c, uint8(bump), nil
		}
	}
	return nil, 0, errors.Wrap(errors.ErrInput, "no viable bump")
}

// DeriveWithBump reconstructs a derived condition from its seeds and bump.
// It fails if the digest of the candidate lies on the curve.
func DeriveWithBump(domain string, bump uint8, seeds ...[]byte) (Condition, error) {
	if err := validateSeeds(seeds); err != nil {
		return nil, err
	}
	c := derivedCondition(domain, bump, seeds)
	if err := c.Validate(); err != nil {
		return nil, errors.Wrapf(err, "domain %q", domain)
	}
	if isOnCurve(sha256.Sum256(c)) {
		return nil, errors.Wrapf(errors.ErrInput, "bump %d is not a valid derivation", bump)
	}
	return c, nil
}

// VerifyDerivation returns true if the address is derived from the given
// domain, seeds and bump.
func VerifyDerivation(addr Address, domain string, bump uint8, seeds ...[]byte) bool {
	c, err := DeriveWithBump(domain, bump, seeds...)
	if err != nil {
		return false
	}
	return c.Address().Equals(addr)
}

func validateSeeds(seeds [][]byte) error {
	if len(seeds) > MaxSeeds {
		return errors.Wrapf(errors.ErrInput, "too many seeds: %d", len(seeds))
	}
	for i, s := range seeds {
		if len(s) > MaxSeedLength {
			return errors.Wrapf(errors.ErrInput, "seed %d too long: %d", i, len(s))
		}
	}
	return nil
}

// derivedCondition length-prefixes every seed so that no two seed lists
// serialize to the same bytes.
func derivedCondition(domain string, bump uint8, seeds [][]byte) Condition {
	var data []byte
	for _, s := range seeds {
		data = append(data, byte(len(s)))
		data = append(data, s...)
	}
	data = append(data, bump)
	return NewCondition(domain, DerivedType, data)
}

// isOnCurve reports whether the 32 bytes decode as an edwards25519 point,
// which is what an ed25519 public key is.
func isOnCurve(enc [32]byte) bool {
	_, err := new(edwards25519.Point).SetBytes(enc[:])
	return err == nil
}
