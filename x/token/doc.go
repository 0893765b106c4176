/*
Package token implements fungible asset accounts.

Every account holds a balance of exactly one asset and is controlled by an
authority address. Only the authority can move funds out of an account or
close it. The authority is fixed when the account is created.

Each owner has one associated account per asset, at an address derived from
the owner and the ticker. The associated account of the native asset pays
for storage reserves.
*/
package token
