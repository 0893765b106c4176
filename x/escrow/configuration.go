package escrow

import (
	"regexp"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
)

var isDomainTag = regexp.MustCompile(`^[a-zA-Z0-9_\-]{3,8}$`).MatchString

// Configuration of the escrow extension. It is read once, from the genesis
// "conf" section under the "escrow" key, and never changes afterwards.
type Configuration struct {
	// DomainTag scopes all derived addresses of this extension.
	DomainTag string `protobuf:"bytes,1,opt,name=domain_tag,proto3" json:"domain_tag"`
	// RecordReserve is the amount of the native asset the depositor pays
	// for keeping an escrow record. It is refunded when the record is
	// closed.
	RecordReserve uint64 `protobuf:"varint,2,opt,name=record_reserve,proto3" json:"record_reserve"`
}

var _ gconf.Configuration = (*Configuration)(nil)

func (c *Configuration) Reset()         { *c = Configuration{} }
func (c *Configuration) String() string { return proto.CompactTextString(c) }
func (*Configuration) ProtoMessage()    {}

// Validate ensures the configuration is valid.
func (c *Configuration) Validate() error {
	if !isDomainTag(c.DomainTag) {
		return errors.Wrapf(errors.ErrInput, "invalid domain tag %q", c.DomainTag)
	}
	return nil
}

// LoadConfiguration reads the escrow configuration from the genesis options.
func LoadConfiguration(opts ledger.Options) (Configuration, error) {
	var conf Configuration
	err := gconf.Read(opts, "escrow", &conf)
	return conf, err
}
