package utils

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/ledgertest"
	"github.com/iov-one/ledger/ledgertest/assert"
	"github.com/iov-one/ledger/store"
	"github.com/tendermint/tendermint/libs/log"
)

type panicHandler struct{}

func (panicHandler) Check(ledger.Context, ledger.KVStore, ledger.Tx) (*ledger.CheckResult, error) {
	panic("check")
}

func (panicHandler) Deliver(ledger.Context, ledger.KVStore, ledger.Tx) (*ledger.DeliverResult, error) {
	panic("deliver")
}

func TestRecovery(t *testing.T) {
	h := ledgertest.Decorate(panicHandler{}, NewRecovery())
	db := store.MemStore()
	tx := &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: "test/panic"}}

	var buf bytes.Buffer
	ctx := ledger.WithLogger(context.Background(), log.NewTMLogger(log.NewSyncWriter(&buf)))

	_, err := h.Check(ctx, db, tx)
	assert.IsErr(t, errors.ErrPanic, err)
	if !strings.Contains(err.Error(), "test/panic: check") {
		t.Fatalf("unexpected error: %s", err)
	}

	_, err = h.Deliver(ctx, db, tx)
	assert.IsErr(t, errors.ErrPanic, err)

	logs := buf.String()
	if strings.Count(logs, "recovered panic") != 2 || !strings.Contains(logs, "path=test/panic") {
		t.Fatalf("unexpected logs: %s", logs)
	}

	// Without a panic nothing is logged.
	buf.Reset()
	ok := ledgertest.Decorate(&ledgertest.Handler{}, NewRecovery())
	_, err = ok.Deliver(ctx, db, tx)
	assert.Nil(t, err)
	if buf.Len() != 0 {
		t.Fatalf("unexpected logs: %s", buf.String())
	}
}

func TestSavepoint(t *testing.T) {
	key, value := []byte("key"), []byte("value")

	cases := map[string]struct {
		decorator ledger.Decorator
		handler   *ledgertest.Handler
		wantCheck []byte
		wantDeliv []byte
	}{
		"savepoint on deliver keeps a successful write": {
			decorator: NewSavepoint().OnDeliver(),
			handler:   &ledgertest.Handler{WriteKey: key, WriteValue: value},
			wantCheck: value,
			wantDeliv: value,
		},
		"savepoint on deliver drops a failed write": {
			decorator: NewSavepoint().OnDeliver(),
			handler: &ledgertest.Handler{
				WriteKey:   key,
				WriteValue: value,
				CheckErr:   errors.ErrState,
				DeliverErr: errors.ErrState,
			},
			// check is not protected
			wantCheck: value,
			wantDeliv: nil,
		},
		"savepoint on both drops failed writes": {
			decorator: NewSavepoint().OnCheck().OnDeliver(),
			handler: &ledgertest.Handler{
				WriteKey:   key,
				WriteValue: value,
				CheckErr:   errors.ErrState,
				DeliverErr: errors.ErrState,
			},
			wantCheck: nil,
			wantDeliv: nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			h := ledgertest.Decorate(tc.handler, tc.decorator)
			tx := &ledgertest.Tx{}

			db := store.MemStore()
			_, _ = h.Check(context.Background(), db, tx)
			got, err := db.Get(key)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantCheck, got)

			db = store.MemStore()
			_, _ = h.Deliver(context.Background(), db, tx)
			got, err = db.Get(key)
			assert.Nil(t, err)
			assert.Equal(t, tc.wantDeliv, got)
		})
	}
}

func TestLogging(t *testing.T) {
	var buf bytes.Buffer
	ctx := ledger.WithLogger(context.Background(), log.NewTMLogger(&buf))
	tx := &ledgertest.Tx{Msg: &ledgertest.Msg{RoutePath: "escrow/deposit"}}
	db := store.MemStore()

	ok := ledgertest.Decorate(&ledgertest.Handler{
		DeliverResult: ledger.DeliverResult{Log: "all good"},
	}, NewLogging())
	_, err := ok.Deliver(ctx, db, tx)
	assert.Nil(t, err)
	if out := buf.String(); !strings.Contains(out, "all good") || !strings.Contains(out, "escrow/deposit") {
		t.Fatalf("unexpected log output: %q", out)
	}

	buf.Reset()
	failing := ledgertest.Decorate(&ledgertest.Handler{DeliverErr: errors.ErrUnauthorized}, NewLogging())
	_, err = failing.Deliver(ctx, db, tx)
	assert.IsErr(t, errors.ErrUnauthorized, err)
	if out := buf.String(); !strings.Contains(out, "unauthorized") {
		t.Fatalf("unexpected log output: %q", out)
	}
}
