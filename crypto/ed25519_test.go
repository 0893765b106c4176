package crypto

import (
	"bytes"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/ledgertest/assert"
)

func TestEd25519Signing(t *testing.T) {
	private := GenPrivKeyEd25519()
	public := private.PublicKey()

	msg := []byte("foobar")
	msg2 := []byte("dingbooms")

	sig := private.Sign(msg)
	sig2 := private.Sign(msg2)
	if bytes.Equal(sig, sig2) {
		t.Fatal("different messages produce the same signature")
	}

	if !public.Verify(msg, sig) {
		t.Fatal("cannot verify a message signed with this public key")
	}
	if public.Verify(msg, sig2) {
		t.Fatal("verified message signature of the wrong message")
	}
	if public.Verify(msg, nil) {
		t.Fatal("verified a nil signature of a message")
	}
	if (&PublicKey{}).Verify(msg, sig) {
		t.Fatal("empty key verified a signature")
	}
}

func TestEd25519Condition(t *testing.T) {
	pub := GenPrivKeyEd25519().PublicKey()
	pub2 := GenPrivKeyEd25519().PublicKey()

	assert.Nil(t, pub.Condition().Validate())
	if pub.Condition().Equals(pub2.Condition()) {
		t.Fatal("two keys share a condition")
	}
	assert.Nil(t, pub.Address().Validate())
	assert.Equal(t, pub.Condition().Address(), pub.Address())
}

func TestEd25519FromSeed(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, 32)
	a := PrivKeyEd25519FromSeed(seed)
	b := PrivKeyEd25519FromSeed(seed)
	assert.Equal(t, a.PublicKey(), b.PublicKey())

	raw, err := ledger.Marshal(a.PublicKey())
	assert.Nil(t, err)
	var loaded PublicKey
	assert.Nil(t, ledger.Unmarshal(raw, &loaded))
	assert.Equal(t, a.PublicKey().Ed25519, loaded.Ed25519)
}
