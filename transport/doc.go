/*
Package transport maintains the full-duplex framed JSON-RPC session to a
channel-FSM node: connect, send a frame, close, and an inbound stream of
frames. A connection loss surfaces as the Inbound channel closing; callers
observe this exactly once.

The default implementation (WebSocket) uses nhooyr.io/websocket for a
context-aware, modern WebSocket surface, adapted into a Dial-side duplex
client connection. A Pipe implementation is provided for tests: two
Transports wired directly together without a socket, in place of a
net.Pipe-based TCP loopback.
*/
package transport
