/*
Package types contains the data model shared by every layer of the state
channel client: addresses, arbitrary-precision amounts, channel status and
round bookkeeping, the off-chain update sub-operations, and the error
taxonomy raised by the transport, correlator, sign broker, and FSM.

None of the types in this package are threadsafe; synchronization, where
needed, is provided by the callers in package fsm and client.
*/
package types
