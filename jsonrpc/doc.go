/*
Package jsonrpc defines the wire frame exchanged with a channel-FSM node:
a JSON-RPC 2.0 text frame carrying either an outbound request, an inbound
result/error response correlated to a request id, or a server-originated
notification with no id.

The frame shape keeps the usual request/response/error struct triad, adapted
from a one-shot HTTP server response into a frame read from and written to a
persistent full-duplex connection.
*/
package jsonrpc
