package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListEscrows(t *testing.T) {
	depositor := ledgertest.NewCondition().Address()
	rows, err := listEscrows(query{owner: depositor, domain: "escrow", offset: 3, limit: 2})
	require.NoError(t, err)
	require.Len(t, rows, 4)

	rec, _, err := escrow.RecordCondition(escrow.Configuration{DomainTag: "escrow"}, depositor, 3)
	require.NoError(t, err)
	assert.Equal(t, "3 record", rows[0].label)
	assert.Equal(t, rec.Address(), rows[0].addr)
	assert.Equal(t, "4 custody", rows[3].label)

	var out bytes.Buffer
	printRows(&out, rows, true)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 5)
	assert.Contains(t, lines[0], "address")
	assert.Contains(t, lines[1], rec.Address().String())
}

func TestListTokenAccounts(t *testing.T) {
	owner := ledgertest.NewCondition().Address()
	rows, err := listTokenAccounts(query{owner: owner, tickers: []string{"M", "NAT"}})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	want, err := token.AssociatedAddress(owner, "NAT")
	require.NoError(t, err)
	assert.Equal(t, want, rows[1].addr)

	_, err = listTokenAccounts(query{owner: owner, tickers: []string{"bad ticker"}})
	assert.Error(t, err)

	_, err = listEscrows(query{owner: owner, domain: "a/b", limit: 1})
	assert.Error(t, err)
}
