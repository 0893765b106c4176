package gconf

import (
	"encoding/json"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
)

type myConfig struct {
	Number int64  `protobuf:"varint,1,opt,name=number,proto3" json:"number"`
	Text   string `protobuf:"bytes,2,opt,name=text,proto3" json:"text"`
}

func (c *myConfig) Reset()         { *c = myConfig{} }
func (c *myConfig) String() string { return proto.CompactTextString(c) }
func (*myConfig) ProtoMessage()    {}

func (c *myConfig) Validate() error {
	if c.Number < 0 {
		return errors.Wrap(errors.ErrInput, "negative number")
	}
	return nil
}

func TestRead(t *testing.T) {
	cases := map[string]struct {
		Genesis string
		Want    myConfig
		WantErr *errors.Error
	}{
		"valid configuration": {
			Genesis: `{"conf": {"mypkg": {"number": 7, "text": "seven"}}}`,
			Want:    myConfig{Number: 7, Text: "seven"},
		},
		"missing package": {
			Genesis: `{"conf": {"other": {"number": 7}}}`,
			WantErr: errors.ErrNotFound,
		},
		"missing conf section": {
			Genesis: `{}`,
			WantErr: errors.ErrNotFound,
		},
		"invalid json": {
			Genesis: `{"conf": {"mypkg": {"number": "seven"}}}`,
			WantErr: errors.ErrInput,
		},
		"invalid configuration": {
			Genesis: `{"conf": {"mypkg": {"number": -1}}}`,
			WantErr: errors.ErrInput,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var opts ledger.Options
			assert.Nil(t, json.Unmarshal([]byte(tc.Genesis), &opts))

			var conf myConfig
			err := Read(opts, "mypkg", &conf)
			if !tc.WantErr.Is(err) {
				t.Fatalf("unexpected error: %+v", err)
			}
			if tc.WantErr == nil {
				assert.Equal(t, tc.Want, conf)
			}
		})
	}
}

func TestInitConfigAndLoad(t *testing.T) {
	db := store.MemStore()

	var loaded myConfig
	assert.IsErr(t, errors.ErrNotFound, Load(db, "mypkg", &loaded))

	var opts ledger.Options
	assert.Nil(t, json.Unmarshal([]byte(`{"conf": {"mypkg": {"number": 3, "text": "x"}}}`), &opts))
	var conf myConfig
	assert.Nil(t, InitConfig(db, opts, "mypkg", &conf))

	assert.Nil(t, Load(db, "mypkg", &loaded))
	assert.Equal(t, myConfig{Number: 3, Text: "x"}, loaded)

	assert.IsErr(t, errors.ErrInput, Save(db, "mypkg", &myConfig{Number: -4}))
}
