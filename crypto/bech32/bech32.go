// Package bech32 encodes ledger addresses in their human readable form.
// Addresses are published with the "ledger" prefix on the main network and
// "tledger" on test networks, for example ledger1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5csdhxw.
package bech32

import (
	"github.com/btcsuite/btcutil/bech32"
	"github.com/iov-one/ledger/errors"
)

const (
	// MainnetHRP prefixes addresses of the main network.
	MainnetHRP = "ledger"
	// TestnetHRP prefixes addresses of test networks.
	TestnetHRP = "tledger"
)

// Decode converts given bech32 encoded representation into raw payload and a
// human readable part.
func Decode(raw string) (string, []byte, error) {
	hrp, payload, err := bech32.Decode(raw)
	if err != nil {
		return "", nil, errors.Wrap(err, "bech32 decode")
	}
	payload, err = bech32.ConvertBits(payload, 5, 8, false)
	if err != nil {
		return "", nil, errors.Wrap(err, "convert bits")
	}
	return hrp, payload, nil
}

// DecodeAddress decodes a bech32 address carrying one of the ledger
// prefixes.
func DecodeAddress(raw string) ([]byte, error) {
	hrp, payload, err := Decode(raw)
	if err != nil {
		return nil, err
	}
	if hrp != MainnetHRP && hrp != TestnetHRP {
		return nil, errors.Wrapf(errors.ErrInput, "unknown address prefix %q", hrp)
	}
	return payload, nil
}

// Encode converts given bytes into bech32 encoded representation.
func Encode(hrp string, payload []byte) ([]byte, error) {
	payload, err := bech32.ConvertBits(payload, 8, 5, true)
	if err != nil {
		return nil, errors.Wrap(err, "convert bits")
	}
	raw, err := bech32.Encode(hrp, payload)
	if err != nil {
		return nil, errors.Wrap(err, "bech32 encode")
	}
	return []byte(raw), nil
}
