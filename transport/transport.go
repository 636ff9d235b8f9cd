package transport

import (
	"context"

	"github.com/aeternity/aesc-go/jsonrpc"
)

// Transport is a full-duplex framed JSON-RPC session to a channel-FSM node.
// Implementations own exactly one connection. The correlator (package rpc)
// does not serialize sends: Call and Notify may invoke Send from several
// goroutines at once, so implementations must accept concurrent Send calls.
type Transport interface {
	// Send writes a single outbound frame. It returns a
	// *types.ChannelConnectionError-wrapped error if the transport has
	// already closed.
	Send(ctx context.Context, f jsonrpc.Frame) error

	// Inbound returns the channel of frames received from the node. The
	// channel is closed exactly once when the connection is lost or Close
	// is called; a caller ranging over it sees that as the end of the
	// session.
	Inbound() <-chan jsonrpc.Frame

	// Closed returns a channel that is closed when the transport has
	// terminated, carrying the error that caused termination, if any (nil
	// for a caller-initiated Close).
	Closed() <-chan error

	// Close terminates the connection. It is idempotent.
	Close() error
}
