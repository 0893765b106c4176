package ledgertest

import (
	"encoding/binary"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/crypto"
)

// Tx represents a ledger transaction carrying a single message.
type Tx struct {
	// Msg is the message that is to be processed by this transaction.
	Msg ledger.Msg
	// Err if set is returned by any method call.
	Err error
}

var _ ledger.Tx = (*Tx)(nil)

func (tx *Tx) GetMsg() (ledger.Msg, error) {
	return tx.Msg, tx.Err
}

// Msg represents a ledger message. Only RoutePath is serialized and the
// type cannot be unmarshalled.
type Msg struct {
	// Path returned by the path method, consumed by the router.
	RoutePath string `protobuf:"bytes,1,opt,name=route_path,proto3"`
	// Err if set is returned by Validate.
	Err error
}

var _ ledger.Msg = (*Msg)(nil)

func (m *Msg) Reset()         { *m = Msg{} }
func (m *Msg) String() string { return "Msg{" + m.RoutePath + "}" }
func (*Msg) ProtoMessage()    {}

func (m *Msg) Path() string {
	return m.RoutePath
}

func (m *Msg) Validate() error {
	return m.Err
}

// NewCondition returns a condition of a freshly generated key.
func NewCondition() ledger.Condition {
	return crypto.GenPrivKeyEd25519().PublicKey().Condition()
}

// SequenceID returns an 8 byte big endian encoded representation of given
// value.
func SequenceID(n uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, n)
	return b
}
