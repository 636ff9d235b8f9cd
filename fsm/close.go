package fsm

import (
	"context"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/types"
)

// Shutdown submits a mutual-close advance and blocks until the node
// confirms the close transaction is signed by both parties. The channel's
// Status becomes closing immediately and closed once the close is observed
// on chain.
func (f *FSM) Shutdown(ctx context.Context) (types.TxBlob, error) {
	pa := newPendingAction(types.ActionShutdown)
	f.post(func() { f.submit(pa) })
	outcome, err := await(f, pa, ctx, func(p *pendingAction) types.AdvanceOutcome { return p.outcome })
	if err != nil {
		return "", err
	}
	return outcome.SignedTx, nil
}

// beginLeave issues channels.leave, a direct call/response rather than a
// co-signed advance: the node simply releases the session while preserving
// the channel for a future reestablish.
func (f *FSM) beginLeave(ctx context.Context, pa *pendingAction) {
	f.transition(StateAwaitingLeaveAck)
	go func() {
		raw, err := f.corr.Call(ctx, jsonrpc.MethodLeave, struct{}{})
		f.post(func() { f.finishLeave(pa, raw, err) })
	}()
}

func (f *FSM) finishLeave(pa *pendingAction, raw []byte, err error) {
	if err != nil {
		pa.err = err
		close(pa.done)
		f.transition(StateDisconnected)
		f.startNext()
		return
	}
	var result leaveParams
	if err := decode(raw, &result); err != nil {
		pa.err = err
		close(pa.done)
		f.transition(StateDisconnected)
		f.startNext()
		return
	}
	f.channelID = result.ChannelID
	f.lastSignedTx = result.Tx
	pa.leave = LeaveResult{ChannelID: result.ChannelID, SignedTx: result.Tx}
	close(pa.done)
	f.transition(StateDisconnected)
	f.startNext()
}

// handleLeaveAck handles the channels.leave notification the node may also
// emit unsolicited (the counterparty left first); it does not, by itself,
// answer a pending Leave call, which is resolved directly from the call's
// response in finishLeave.
func (f *FSM) handleLeaveAck(frame jsonrpc.Frame) {
	var params leaveParams
	if err := decode(frame.Params, &params); err != nil {
		f.emitError(err, &frame)
		return
	}
	f.lastSignedTx = params.Tx
	f.transition(StateDisconnected)
}

// Leave releases the session, preserving the channel on the node for a
// later reestablish, and returns the id and last mutually signed state
// needed to resume it.
func (f *FSM) Leave(ctx context.Context) (LeaveResult, error) {
	pa := newPendingAction(types.ActionLeave)
	f.post(func() { f.submit(pa) })
	return await(f, pa, ctx, func(p *pendingAction) LeaveResult { return p.leave })
}

// SendMessage sends a free-form application message over the channel
// session. It bypasses the action queue: messaging has no co-signing step
// and does not mutate FSM state, so it may run concurrently with a pending
// advance.
func (f *FSM) SendMessage(ctx context.Context, to types.Address, content []byte) error {
	return f.corr.Notify(ctx, jsonrpc.MethodMessage, messageParams{To: to, Message: content})
}
