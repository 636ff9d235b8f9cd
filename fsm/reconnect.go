package fsm

import (
	"context"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/types"
)

// beginReconnect re-sends channels.reestablish for a channel the transport
// most recently reported disconnected. The exact round bookkeeping across a
// reestablish is underspecified by the node's protocol; this client keeps
// whatever round it last observed rather than resetting it, and trusts the
// next channels.update broadcast to correct it if the node disagrees (see
// DESIGN.md).
func (f *FSM) beginReconnect(ctx context.Context, pa *pendingAction) {
	f.transition(StateAwaitingReestablish)
	channelID, fsmID := f.channelID, f.fsmID
	if fsmID == "" {
		// The node has not reported ids this session yet: resend the ones
		// Initialize reestablished with.
		channelID, fsmID = f.cfg.ExistingChannelID, f.cfg.ExistingFsmID
	}
	_ = f.corr.Notify(ctx, jsonrpc.MethodReestablish, reestablishParams{
		ChannelID:  channelID,
		FsmID:      fsmID,
		OffChainTx: f.lastSignedTx,
	})
}

// Reconnect re-establishes a session after the transport observed a
// disconnect, resolving once the node confirms the session is live again.
func (f *FSM) Reconnect(ctx context.Context) error {
	pa := newPendingAction(types.ActionReconnect)
	f.post(func() { f.submit(pa) })
	_, err := await(f, pa, ctx, func(p *pendingAction) struct{} { return struct{}{} })
	return err
}
