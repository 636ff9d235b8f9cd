package types

import "fmt"

// IllegalArgumentError is returned synchronously by the action surface when
// the caller supplies an invalid parameter, e.g. a negative amount.
type IllegalArgumentError struct {
	Parameter string
	Reason    string
}

func (e *IllegalArgumentError) Error() string {
	return fmt.Sprintf("illegal argument %s: %s", e.Parameter, e.Reason)
}

// InsufficientBalanceError indicates an action cannot be funded off-chain
// with the balances the channel currently believes it holds.
type InsufficientBalanceError struct {
	Required Amount
	Balance  Amount
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance: required %s, have %s", e.Required, e.Balance)
}

// ChannelConnectionError wraps a transport failure: a refused connect, a
// send attempted after close, or a dropped remote connection.
type ChannelConnectionError struct {
	Cause error
}

func (e *ChannelConnectionError) Error() string {
	if e.Cause == nil {
		return "channel connection error"
	}
	return fmt.Sprintf("channel connection error: %v", e.Cause)
}

func (e *ChannelConnectionError) Unwrap() error {
	return e.Cause
}

// NodeError carries a node-originated {code, message} pair, unchanged,
// as reported on an inbound JSON-RPC error frame.
type NodeError struct {
	Code    int
	Message string
}

func (e *NodeError) Error() string {
	return fmt.Sprintf("node error %d: %s", e.Code, e.Message)
}

// ChannelIncomingMessageError wraps a node error frame received while the
// FSM was handling an inbound notification, together with the handler's
// classification of what was being attempted.
type ChannelIncomingMessageError struct {
	Method  string
	Node    *NodeError
	Handler error
}

func (e *ChannelIncomingMessageError) Error() string {
	if e.Handler != nil {
		return fmt.Sprintf("incoming message error handling %s: %v (node: %v)", e.Method, e.Handler, e.Node)
	}
	return fmt.Sprintf("incoming message error handling %s: %v", e.Method, e.Node)
}

func (e *ChannelIncomingMessageError) Unwrap() error {
	return e.Handler
}

// UnknownChannelStateError indicates the FSM received a message it could not
// map onto a legal transition from its current state. It does not, by
// itself, force the FSM into died; the caller should log it as a likely bug
// and may continue using the channel.
type UnknownChannelStateError struct {
	State   string
	Method  string
	Message string
}

func (e *UnknownChannelStateError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("unknown channel state: state=%s method=%s", e.State, e.Method)
}

// TimeoutError indicates a round-trip exceeded its TTL.
type TimeoutError struct {
	Method string
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for response to %s", e.Method)
}
