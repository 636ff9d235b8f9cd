package client

import (
	"context"

	"github.com/aeternity/aesc-go/fsm"
	"github.com/aeternity/aesc-go/types"
)

// Update submits an off-chain transfer. amount must be positive; the FSM
// itself has no opinion on affordability, so a negative or zero amount is
// rejected here rather than round-tripped to the node.
func (c *Client) Update(ctx context.Context, from, to types.Address, amount types.Amount) (types.AdvanceOutcome, error) {
	if amount.Sign() <= 0 {
		return types.AdvanceOutcome{}, &types.IllegalArgumentError{Parameter: "amount", Reason: "must be positive"}
	}
	return c.fsm.Update(ctx, types.OffChainTransfer{From: from, To: to, Amount: amount})
}

// Deposit submits an on-chain-funded deposit.
func (c *Client) Deposit(ctx context.Context, from types.Address, amount types.Amount, cb types.OnChainCallbacks) (types.AdvanceOutcome, error) {
	if amount.Sign() <= 0 {
		return types.AdvanceOutcome{}, &types.IllegalArgumentError{Parameter: "amount", Reason: "must be positive"}
	}
	return c.fsm.Deposit(ctx, types.OffChainDeposit{From: from, Amount: amount}, cb)
}

// Withdraw submits an on-chain-settled withdrawal.
func (c *Client) Withdraw(ctx context.Context, to types.Address, amount types.Amount, cb types.OnChainCallbacks) (types.AdvanceOutcome, error) {
	if amount.Sign() <= 0 {
		return types.AdvanceOutcome{}, &types.IllegalArgumentError{Parameter: "amount", Reason: "must be positive"}
	}
	return c.fsm.Withdraw(ctx, types.OffChainWithdrawal{To: to, Amount: amount}, cb)
}

// CreateContract deploys a contract into the channel's off-chain VM state;
// the accepted outcome's Address is the new contract's derived address.
func (c *Client) CreateContract(ctx context.Context, op types.OffChainNewContract) (types.AdvanceOutcome, error) {
	return c.fsm.CreateContract(ctx, op)
}

// CallContract calls a contract previously deployed into the channel's
// off-chain VM state.
func (c *Client) CallContract(ctx context.Context, op types.OffChainCallContract) (types.AdvanceOutcome, error) {
	return c.fsm.CallContract(ctx, op)
}

// ForceProgress unilaterally advances the channel on-chain, bypassing the
// counterparty; used to settle a dispute when the counterparty stops
// cooperating.
func (c *Client) ForceProgress(ctx context.Context, update types.Update) (fsm.ForceProgressResult, error) {
	return c.fsm.ForceProgress(ctx, update)
}

// Shutdown submits a mutual close, returning the final signed close
// transaction once both parties have signed it.
func (c *Client) Shutdown(ctx context.Context) (types.TxBlob, error) {
	return c.fsm.Shutdown(ctx)
}

// Leave releases the session while preserving the channel on the node for a
// later Reconnect.
func (c *Client) Leave(ctx context.Context) (fsm.LeaveResult, error) {
	return c.fsm.Leave(ctx)
}

// SendMessage sends a free-form application message over the channel
// session.
func (c *Client) SendMessage(ctx context.Context, to types.Address, content []byte) error {
	return c.fsm.SendMessage(ctx, to, content)
}

// Reconnect re-establishes the session after the transport reports a
// disconnect. The reestablish carries the fsm id the node reported during
// this session or, before it has reported one, the existing fsm id Dial was
// configured with; with neither, the node rejects the reestablish as
// referring to an unknown session.
func (c *Client) Reconnect(ctx context.Context) error {
	return c.fsm.Reconnect(ctx)
}
