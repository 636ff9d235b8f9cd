package fsm

import "github.com/aeternity/aesc-go/types"

// State is the FSM's internal state, finer-grained than the caller-visible
// types.Status. Several states collapse onto the same Status; the mapping
// lives in status().
type State string

const (
	StateConnecting                  State = "connecting"
	StateAwaitingReestablish         State = "awaitingReestablish"
	StateHalfSigned                  State = "halfSigned"
	StateSigned                      State = "signed"
	StateAwaitingOnChainTx           State = "awaitingOnChainTx"
	StateAwaitingOnChainConfirmation State = "awaitingOnChainConfirmation"
	StateOpen                        State = "open"
	StateAwaitingUpdate              State = "awaitingUpdate"
	StateAwaitingDeposit             State = "awaitingDeposit"
	StateAwaitingWithdraw            State = "awaitingWithdraw"
	StateAwaitingLeaveAck            State = "awaitingLeaveAck"
	StateAwaitingShutdownAck         State = "awaitingShutdownAck"
	StateClosing                     State = "closing"
	StateClosed                      State = "closed"
	StateDisconnected                State = "disconnected"
	StateDied                        State = "died"
)

// status maps the fine-grained FSM state onto the coarser caller-visible
// Status.
func status(s State) types.Status {
	switch s {
	case StateConnecting:
		return types.StatusConnecting
	case StateAwaitingReestablish:
		return types.StatusAwaitingReestablish
	case StateHalfSigned, StateSigned:
		return types.StatusConnected
	case StateAwaitingOnChainTx:
		return types.StatusAwaitingOnChainTx
	case StateAwaitingOnChainConfirmation:
		return types.StatusAwaitingOnChainConfirmation
	case StateOpen, StateAwaitingLeaveAck:
		return types.StatusOpen
	case StateAwaitingUpdate:
		return types.StatusAwaitingUpdate
	case StateAwaitingDeposit:
		return types.StatusAwaitingDeposit
	case StateAwaitingWithdraw:
		return types.StatusAwaitingWithdraw
	case StateClosing, StateAwaitingShutdownAck:
		return types.StatusClosing
	case StateClosed:
		return types.StatusClosed
	case StateDisconnected:
		return types.StatusDisconnected
	case StateDied:
		return types.StatusDied
	default:
		return types.StatusConnecting
	}
}

// Config parameterizes a new FSM: the open-channel negotiation parameters,
// or, if Existing* is set, the parameters to reestablish a prior session.
type Config struct {
	Role Role

	InitiatorID types.Address
	ResponderID types.Address

	PushAmount      types.Amount
	InitiatorAmount types.Amount
	ResponderAmount types.Amount
	ChannelReserve  types.Amount
	LockPeriod      uint64

	// Existing* reestablishes a previously opened session instead of
	// negotiating a new open.
	ExistingChannelID  types.ChannelID
	ExistingFsmID      types.FsmID
	ExistingOffChainTx types.TxBlob
}

// Role is an alias kept local to the package so fsm call sites read
// fsm.RoleInitiator without importing types solely for that constant; its
// values are identical to types.Role.
type Role = types.Role

const (
	RoleInitiator = types.RoleInitiator
	RoleResponder = types.RoleResponder
)
