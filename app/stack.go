package app

import (
	"sync"

	"github.com/iov-one/ledger"
	"github.com/iov-one/ledger/errors"
	"github.com/iov-one/ledger/gconf"
	"github.com/iov-one/ledger/x"
	"github.com/iov-one/ledger/x/escrow"
	"github.com/iov-one/ledger/x/sigs"
	"github.com/iov-one/ledger/x/token"
	"github.com/iov-one/ledger/x/utils"
	"github.com/tendermint/tendermint/libs/log"
)

// Authenticator returns the authentication used by all handlers: the keys
// that signed the transaction and the escrow authority of the instruction
// being executed.
func Authenticator() x.Authenticator {
	return x.ChainAuth(sigs.Authenticate{}, escrow.Authenticate{})
}

// Routes registers the token and escrow handlers.
func Routes(tokenConf token.Configuration, escrowConf escrow.Configuration) *Router {
	auth := Authenticator()
	tokens := token.NewController(auth, tokenConf)
	r := NewRouter()
	token.RegisterRoutes(r, auth, tokens)
	escrow.RegisterRoutes(r, auth, tokens, escrowConf)
	return r
}

// Stack wraps given handler with the standard middleware.
func Stack(h ledger.Handler) ledger.Handler {
	return ChainDecorators(
		utils.NewLogging(),
		utils.NewRecovery(),
		sigs.NewDecorator(),
		utils.NewSavepoint().OnCheck().OnDeliver(),
	).WithHandler(h)
}

// Initializer stores the configuration of all extensions and loads the
// token genesis state.
func Initializer() ledger.Initializer {
	return ledger.ChainInitializers(configInitializer{}, token.Initializer{})
}

type configInitializer struct{}

func (configInitializer) FromGenesis(opts ledger.Options, db ledger.KVStore) error {
	if err := gconf.InitConfig(db, opts, "token", &token.Configuration{}); err != nil {
		return errors.Wrap(err, "token configuration")
	}
	if err := gconf.InitConfig(db, opts, "escrow", &escrow.Configuration{}); err != nil {
		return errors.Wrap(err, "escrow configuration")
	}
	return nil
}

// configured builds the handler stack from the configuration found in the
// store. Configuration is written once in genesis, so the stack is built on
// first use and reused afterwards.
type configured struct {
	mu      sync.Mutex
	handler ledger.Handler
}

var _ ledger.Handler = (*configured)(nil)

func (c *configured) load(db ledger.ReadOnlyKVStore) (ledger.Handler, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.handler != nil {
		return c.handler, nil
	}
	var tc token.Configuration
	if err := gconf.Load(db, "token", &tc); err != nil {
		return nil, errors.Wrap(err, "token configuration")
	}
	var ec escrow.Configuration
	if err := gconf.Load(db, "escrow", &ec); err != nil {
		return nil, errors.Wrap(err, "escrow configuration")
	}
	c.handler = Stack(Routes(tc, ec))
	return c.handler, nil
}

func (c *configured) Check(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.CheckResult, error) {
	h, err := c.load(db)
	if err != nil {
		return nil, err
	}
	return h.Check(ctx, db, tx)
}

func (c *configured) Deliver(ctx ledger.Context, db ledger.KVStore, tx ledger.Tx) (*ledger.DeliverResult, error) {
	h, err := c.load(db)
	if err != nil {
		return nil, err
	}
	return h.Deliver(ctx, db, tx)
}

// NewApplication returns a ledger running the token and escrow extensions
// on top of given store.
func NewApplication(db ledger.CommitKVStore, logger log.Logger) (*Ledger, error) {
	l, err := NewLedger(db, &configured{}, logger)
	if err != nil {
		return nil, err
	}
	return l.WithInit(Initializer()), nil
}
