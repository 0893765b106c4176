/*
Package escrow implements a trustless two-party escrow.

A depositor locks an amount of a single asset in a custody account for a
counterparty. The funds stay there until the depositor releases them. Before
the release only the depositor can take them back (cancel). After the release
only the counterparty can claim them (withdraw).

	∅ --deposit--> active --release--> released
	active   --cancel-->   ∅
	released --withdraw--> ∅

No private key controls the funds. Each escrow record lives at an address
derived from the depositor and a nonce, and that address is the only
authority of the custody account. Handlers re-derive it from the stored
proof and authenticate it for the duration of a single operation.
*/
package escrow
