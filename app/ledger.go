package app

import (
	"encoding/json"
	"fmt"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/tendermint/tendermint/libs/log"
)

// Ledger runs transactions against a committed store.
//
// Every transaction is executed in isolation: its changes are applied only
// if the handler succeeds, so a failing instruction never leaves partial
// state behind. Changes become durable on Commit.
type Ledger struct {
	logger  log.Logger
	store   *CommitStore
	handler ledger.Handler

	// initializer loads the genesis state on InitChain.
	initializer ledger.Initializer

	// chainID is loaded from db in initialization
	// saved once in InitChain
	chainID string

	// height of the block that is being built.
	height int64
}

// NewLedger loads the latest committed state and returns a ledger
// dispatching all transactions to given handler.
func NewLedger(store ledger.CommitKVStore, handler ledger.Handler, logger log.Logger) (*Ledger, error) {
	cs, err := NewCommitStore(store)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	l := &Ledger{
		logger:  logger,
		store:   cs,
		handler: handler,
	}
	if l.chainID, err = loadChainID(cs.DeliverStore()); err != nil {
		return nil, err
	}
	info, err := cs.CommitInfo()
	if err != nil {
		return nil, errors.Wrap(err, "commit info")
	}
	l.height = info.Version + 1
	return l, nil
}

// WithInit is used to set the init function we call
func (l *Ledger) WithInit(init ledger.Initializer) *Ledger {
	l.initializer = init
	return l
}

// ChainID returns the current chainID
func (l *Ledger) ChainID() string {
	return l.chainID
}

// Height returns the height of the block that is being built.
func (l *Ledger) Height() int64 {
	return l.height
}

// InitChain is called once, the first time the chain starts, and not on
// restarts. It stores the chain id and loads the genesis state.
func (l *Ledger) InitChain(chainID string, appState []byte) error {
	if l.chainID != "" {
		return errors.Wrapf(errors.ErrImmutable, "app state previously loaded for chain: %s", l.chainID)
	}
	if len(appState) == 0 {
		return errors.Wrap(errors.ErrEmpty, "app state")
	}
	var opts ledger.Options
	if err := json.Unmarshal(appState, &opts); err != nil {
		return errors.Wrapf(errors.ErrInput, "app state: %s", err)
	}

	db := l.store.DeliverStore()
	if err := saveChainID(db, chainID); err != nil {
		return err
	}
	if l.initializer != nil {
		if err := l.initializer.FromGenesis(opts, db); err != nil {
			return errors.Wrap(err, "genesis")
		}
	}
	l.chainID = chainID
	l.logger.Info("chain initialized", "chain_id", chainID)
	return nil
}

// blockContext extends given context with the chain information.
func (l *Ledger) blockContext(ctx ledger.Context, call string, tx ledger.Tx) ledger.Context {
	if l.chainID != "" && ledger.GetChainID(ctx) == "" {
		ctx = ledger.WithChainID(ctx, l.chainID)
	}
	if _, ok := ledger.GetHeight(ctx); !ok {
		ctx = ledger.WithHeight(ctx, l.height)
	}
	ctx = ledger.WithLogger(ctx, l.logger)
	return ledger.WithLogInfo(ctx, "call", call, "path", ledger.GetPath(tx))
}

// Check validates the transaction against the check state. Changes are
// kept only if it succeeds.
func (l *Ledger) Check(ctx ledger.Context, tx ledger.Tx) (*ledger.CheckResult, error) {
	ctx = l.blockContext(ctx, "check", tx)
	cache := l.store.CheckStore().CacheWrap()
	res, err := l.handler.Check(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write check state")
	}
	return res, nil
}

// Deliver executes the transaction against the deliver state. Changes are
// kept only if it succeeds.
func (l *Ledger) Deliver(ctx ledger.Context, tx ledger.Tx) (*ledger.DeliverResult, error) {
	ctx = l.blockContext(ctx, "deliver", tx)
	cache := l.store.DeliverStore().CacheWrap()
	res, err := l.handler.Deliver(ctx, cache, tx)
	if err != nil {
		cache.Discard()
		return nil, err
	}
	if err := cache.Write(); err != nil {
		return nil, errors.Wrap(err, "write deliver state")
	}
	return res, nil
}

// Commit persists all delivered changes and starts a new block.
func (l *Ledger) Commit() (ledger.CommitID, error) {
	id, err := l.store.Commit()
	if err != nil {
		return id, err
	}
	l.logger.Debug("commit synced",
		"height", id.Version,
		"hash", fmt.Sprintf("%X", id.Hash),
	)
	l.height = id.Version + 1
	return id, nil
}

// DeliverStore gives read access to the state that is being built, for
// queries.
func (l *Ledger) DeliverStore() ledger.ReadOnlyKVStore {
	return l.store.DeliverStore()
}
