package types

import "strings"

// Address is an æternity account, contract, oracle, or oracle-query
// identifier. It is an opaque, base58-encoded string carrying a type prefix
// (ak_ for accounts, ct_ for contracts, ok_ for oracles, oq_ for oracle
// queries) and is never decoded or validated cryptographically by this
// package; the node is the source of truth for validity.
type Address string

const (
	PrefixAccount     = "ak_"
	PrefixContract    = "ct_"
	PrefixOracle      = "ok_"
	PrefixOracleQuery = "oq_"
	PrefixChannel     = "ch_"
	PrefixTransaction = "th_"
	PrefixSignedTx    = "tx_"
)

// HasPrefix reports whether the address carries the given type prefix.
func (a Address) HasPrefix(prefix string) bool {
	return strings.HasPrefix(string(a), prefix)
}

// IsAccount reports whether the address is an account address (ak_).
func (a Address) IsAccount() bool {
	return a.HasPrefix(PrefixAccount)
}

// IsContract reports whether the address is a contract address (ct_).
func (a Address) IsContract() bool {
	return a.HasPrefix(PrefixContract)
}

// String returns the address in its wire representation.
func (a Address) String() string {
	return string(a)
}
