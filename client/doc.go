/*
Package client is the channel client's action surface: the public entry
point that wires a transport, correlator, sign broker, event
bus, and FSM together for one channel session and exposes the caller-facing
methods (update, deposit, withdraw, createContract, callContract,
forceProgress, shutdown, leave, sendMessage, reconnect) plus the read-only
query surface (poi, balances, getContractCall, getContractState,
callContractStatic, cleanContractCalls) that talks to the node directly
without going through the FSM's serial executor.
*/
package client
