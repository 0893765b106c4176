package bech32

import (
	"encoding/hex"
	"testing"

	"github.com/iov-one/ledger/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	// bech32 -e -h tiov 746573742d7061796c6f6164
	const enc = `tiov1w3jhxapdwpshjmr0v9jqymqq4y`
	want, err := hex.DecodeString("746573742d7061796c6f6164")
	require.NoError(t, err)

	hrp, payload, err := Decode(enc)
	require.NoError(t, err)
	assert.Equal(t, "tiov", hrp)
	assert.Equal(t, want, payload)

	raw, err := Encode(hrp, payload)
	require.NoError(t, err)
	assert.Equal(t, enc, string(raw))

	_, _, err = Decode(enc[:len(enc)-1] + "q")
	assert.Error(t, err)
}

func TestDecodeAddress(t *testing.T) {
	addr := make([]byte, 20)
	for i := range addr {
		addr[i] = byte(i + 1)
	}
	cases := map[string]struct {
		enc     string
		wantErr *errors.Error
	}{
		"main network": {
			enc: "ledger1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5csdhxw",
		},
		"test network": {
			enc: "tledger1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5u0jcpx",
		},
		"foreign prefix": {
			enc:     "tiov1w3jhxapdwpshjmr0v9jqymqq4y",
			wantErr: errors.ErrInput,
		},
	}
	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			got, err := DecodeAddress(tc.enc)
			require.True(t, tc.wantErr.Is(err), "%+v", err)
			if tc.wantErr == nil {
				assert.Equal(t, addr, got)
			}
		})
	}

	enc, err := Encode(MainnetHRP, addr)
	require.NoError(t, err)
	assert.Equal(t, "ledger1qypqxpq9qcrsszg2pvxq6rs0zqg3yyc5csdhxw", string(enc))
}
