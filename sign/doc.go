/*
Package sign wraps the caller-supplied Signer in an adapter that serializes
invocations per channel and classifies the return value as a signed
transaction, a caller-defined numeric abort code, or a generic rejection.

The node's channel protocol lets a signer reply with a signed transaction,
an integer abort code, or a plain rejection, all on the same reply channel.
Result gives that a concrete shape up front, so the broker's job narrows to
enforcing the serialization and abort-propagation rules rather than sniffing
which case applies.
*/
package sign
