/*
Package ledger defines the interfaces shared by all parts of the ledger:
storage, transactions, handlers and the conditions that authorize actions.

An extension under x/ implements a set of handlers, one per message path.
Handlers receive a context carrying the block information and the
authentication of the transaction, a store to read and write state, and the
transaction itself. A handler either succeeds with a result or fails with an
error, in which case none of its writes persist.

Authority over state is expressed with conditions. A condition is either a
public key that signed the transaction, or an authority derived from a domain
and a list of seeds with Derive. A derived authority has no private key and
can only be asserted by the code that owns the domain.
*/
package ledger
