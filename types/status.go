package types

// Status is the caller-visible status of a channel session. It is coarser
// than the FSM's internal state (package fsm): several FSM states collapse
// onto the same externally observable Status.
type Status string

const (
	StatusConnecting                  Status = "connecting"
	StatusConnected                   Status = "connected"
	StatusAwaitingOnChainTx           Status = "awaitingOnChainTx"
	StatusAwaitingOnChainConfirmation Status = "awaitingOnChainConfirmation"
	StatusAwaitingReestablish         Status = "awaitingReestablish"
	StatusOpen                        Status = "open"
	StatusAwaitingDeposit             Status = "awaitingDeposit"
	StatusAwaitingWithdraw            Status = "awaitingWithdraw"
	StatusAwaitingUpdate              Status = "awaitingUpdate"
	StatusDisconnected                Status = "disconnected"
	StatusClosing                     Status = "closing"
	StatusClosed                      Status = "closed"
	StatusDied                        Status = "died"
)

// Round is the monotonic, non-negative off-chain sequence number of a
// channel. Round 0 means no off-chain state has been agreed yet; the open
// handshake advances it to 1.
type Round uint64

// ChannelID is the opaque, node-assigned identifier for an on-chain channel
// object, assigned once the channel open is observed on chain.
type ChannelID string

// FsmID is the opaque identifier for a channel-FSM session on the node,
// used to reestablish a session after a disconnect.
type FsmID string

// TxBlob is an opaque, node-encoded transaction blob (base64/base64check as
// the node emits it). This client never decodes or builds transactions
// itself; that is a separate builder/codec's job.
type TxBlob string

// Role identifies which of the two parties to a channel the local session
// represents.
type Role string

const (
	RoleInitiator Role = "initiator"
	RoleResponder Role = "responder"
)
