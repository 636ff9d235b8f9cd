/*
Package fsm is the channel finite-state machine, the heart of the client.
It owns the channel's status, round, ids, and last signed transaction, and
drives them through the open handshake, co-signed off-chain advances,
disputes, and reconnect, in response to inbound node notifications,
caller-submitted actions, and sign broker results.

Concurrency follows a per-channel, single-threaded design: one goroutine
(loop) is the only place FSM fields are mutated, removing the need for a
lock. Unlike a naive receive loop whose handlers block for the whole of a
network round-trip, loop's handlers here never block: any step that must
wait on the signer or the node posts its continuation back onto loop's
queue when it resolves, so unrelated notifications (e.g. an on_chain_tx for
an advance already past its signing step) keep draining while a signature
is outstanding.
*/
package fsm
