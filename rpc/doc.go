/*
Package rpc implements the request correlator for a channel-FSM session: it
assigns monotonic ids to outbound requests, matches inbound response frames
back to the waiting caller by id, and routes inbound notifications (frames
with no id) to the channel FSM's dispatcher keyed by method name.

Responses are split out by id before anything reaches the dispatcher;
notifications are routed by method name, since they carry no id to
correlate against.
*/
package rpc
