package token

import (
	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
)

// Configuration of the token extension. It is read from the genesis "conf"
// section under the "token" key.
type Configuration struct {
	// NativeTicker is the asset storage reserves are paid with.
	NativeTicker string `protobuf:"bytes,1,opt,name=native_ticker,proto3" json:"native_ticker"`
	// AccountReserve is the amount of the native asset charged for
	// creating an account. Zero disables the charge.
	AccountReserve uint64 `protobuf:"varint,2,opt,name=account_reserve,proto3" json:"account_reserve"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Reset()         { *c = Configuration{} }
func (c *Configuration) String() string { return proto.CompactTextString(c) }
func (*Configuration) ProtoMessage()    {}

// Validate ensures the configuration is valid.
func (c *Configuration) Validate() error {
	if !IsTicker(c.NativeTicker) {
		return errors.Wrapf(errors.ErrInput, "invalid native ticker %q", c.NativeTicker)
	}
	return nil
}

// LoadConfiguration reads the token configuration from the genesis options.
func LoadConfiguration(opts ledger.Options) (Configuration, error) {
	var conf Configuration
	err := gconf.Read(opts, "token", &conf)
	return conf, err
}
