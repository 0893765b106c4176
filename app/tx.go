package app

import (
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/x/sigs"
)

// Tx is a signed transaction carrying a single message.
type Tx struct {
	Msg        ledger.Msg
	Signatures []*sigs.StdSignature
}

var (
	_ ledger.Tx     = (*Tx)(nil)
	_ sigs.SignedTx = (*Tx)(nil)
)

// GetMsg returns the message of this transaction.
func (tx *Tx) GetMsg() (ledger.Msg, error) {
	if tx.Msg == nil {
		return nil, errors.Wrap(errors.ErrMsg, "missing message")
	}
	return tx.Msg, nil
}

// GetSignBytes returns the message path, a zero byte and the serialized
// message.
func (tx *Tx) GetSignBytes() ([]byte, error) {
	msg, err := tx.GetMsg()
	if err != nil {
		return nil, err
	}
	raw, err := ledger.Marshal(msg)
	if err != nil {
		return nil, err
	}
	path := msg.Path()
	out := make([]byte, 0, len(path)+1+len(raw))
	out = append(out, path...)
	out = append(out, 0)
	return append(out, raw...), nil
}

// GetSignatures returns all signatures attached to this transaction.
func (tx *Tx) GetSignatures() []*sigs.StdSignature {
	return tx.Signatures
}

// Sign appends the signature of given key, using the next sequence of the
// signer as found in the store.
func (tx *Tx) Sign(db ledger.ReadOnlyKVStore, chainID string, signer *crypto.PrivateKey) error {
	seq, err := sigs.NextNonce(db, signer.PublicKey().Address())
	if err != nil {
		return errors.Wrap(err, "nonce")
	}
	sig, err := sigs.SignTx(signer, tx, chainID, seq)
	if err != nil {
		return errors.Wrap(err, "sign")
	}
	tx.Signatures = append(tx.Signatures, sig)
	return nil
}
