package ledger_test

import (
	"encoding/json"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadOptions(t *testing.T) {
	var opts ledger.Options
	require.NoError(t, json.Unmarshal([]byte(`{"name": "ledger", "count": 3}`), &opts))

	var name string
	require.NoError(t, opts.ReadOptions("name", &name))
	assert.Equal(t, "ledger", name)

	missing := "unchanged"
	require.NoError(t, opts.ReadOptions("missing", &missing))
	assert.Equal(t, "unchanged", missing)

	assert.Error(t, opts.ReadOptions("count", &name))
}

type recordingInit struct {
	name  string
	calls *[]string
	err   error
}

func (r recordingInit) FromGenesis(ledger.Options, ledger.KVStore) error {
	*r.calls = append(*r.calls, r.name)
	return r.err
}

func TestChainInitializers(t *testing.T) {
	var calls []string
	init := ledger.ChainInitializers(
		recordingInit{name: "a", calls: &calls},
		recordingInit{name: "b", calls: &calls, err: errors.ErrState},
		recordingInit{name: "c", calls: &calls},
	)
	err := init.FromGenesis(ledger.Options{}, store.MemStore())
	assert.True(t, errors.ErrState.Is(err))
	assert.Equal(t, []string{"a", "b"}, calls)
}
