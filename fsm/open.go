package fsm

import (
	"context"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/sign"
	"github.com/aeternity/aesc-go/types"
)

// Initialize starts a new channel session: either the open handshake, or,
// if the config carries an existing fsm id, a reestablish. It does not
// block for the handshake to finish; callers
// observe progress through the event bus's StatusChanged events (for a
// reestablish, the move from awaitingReestablish to open).
func (f *FSM) Initialize(ctx context.Context) error {
	if f.cfg.ExistingFsmID != "" {
		return f.corr.Notify(ctx, jsonrpc.MethodReestablish, reestablishParams{
			ChannelID:  f.cfg.ExistingChannelID,
			FsmID:      f.cfg.ExistingFsmID,
			OffChainTx: f.cfg.ExistingOffChainTx,
		})
	}
	return f.corr.Notify(ctx, "channels.initialize", channelOpenParams{
		InitiatorID:     f.cfg.InitiatorID,
		ResponderID:     f.cfg.ResponderID,
		PushAmount:      f.cfg.PushAmount,
		InitiatorAmount: f.cfg.InitiatorAmount,
		ResponderAmount: f.cfg.ResponderAmount,
		ChannelReserve:  f.cfg.ChannelReserve,
		LockPeriod:      f.cfg.LockPeriod,
		Role:            f.cfg.Role,
	})
}

// handleOpenSignRequest handles the channels.sign.initiator_sign and
// channels.sign.responder_sign notifications of the open handshake: both
// roles always answer these through the tagged signer surface, since
// neither side deliberately initiated this particular signature the way
// an action-surface call does.
func (f *FSM) handleOpenSignRequest(tag types.SignTag, frame jsonrpc.Frame) {
	var params signRequestParams
	if err := decode(frame.Params, &params); err != nil {
		f.emitError(err, &frame)
		return
	}
	f.transition(StateHalfSigned)

	go func() {
		res, err := f.broker.SignTagged(context.Background(), tag, params.Tx, sign.Meta{Round: f.round})
		f.post(func() { f.finishOpenSign(tag, res, err) })
	}()
}

func (f *FSM) finishOpenSign(tag types.SignTag, res sign.Result, err error) {
	if err != nil {
		f.emitError(err, nil)
		f.transition(StateDied)
		return
	}
	if res.Rejected || res.Abort != nil {
		f.sendSignReply(context.Background(), jsonrpc.SignRequestMethod(string(tag)), res)
		f.transition(StateDied)
		return
	}
	f.sendSignReply(context.Background(), jsonrpc.SignRequestMethod(string(tag)), res)
	f.transition(StateSigned)
}

// sendSignReply answers a sign request notification, forwarding either the
// signed tx or the caller's abort/reject as a channels.error, using the
// node's abort-code convention.
func (f *FSM) sendSignReply(ctx context.Context, method string, res sign.Result) {
	if res.Rejected || res.Abort != nil {
		params := errorParams{ChannelID: f.channelID}
		if res.Abort != nil {
			params.Code = *res.Abort
			params.Message = types.ErrorUserDefined
		}
		_ = f.corr.Notify(ctx, jsonrpc.NotifyError, params)
		return
	}
	_ = f.corr.Notify(ctx, method, signedParams{Tx: res.SignedTx})
}

// handleLockEvent advances the open handshake's funding lock sequence and
// a deposit/withdraw's on-chain lock sequence; both share the same shape
// (an on-chain tx notification followed by an own-then-counterparty lock
// notification), so one handler answers the right on-chain callback bundle
// for whichever is currently active.
func (f *FSM) handleLockEvent(method string, frame jsonrpc.Frame) {
	switch method {
	case jsonrpc.NotifyFundingCreated, jsonrpc.NotifyFundingSigned:
		f.transition(StateAwaitingOnChainTx)
	case jsonrpc.NotifyOnChainTx:
		var params onChainTxParams
		if err := decode(frame.Params, &params); err != nil {
			f.emitError(err, &frame)
			return
		}
		f.lastSignedTx = params.Tx
		f.transition(StateAwaitingOnChainConfirmation)
		if f.lockCB.OnOnChainTx != nil {
			f.lockCB.OnOnChainTx(params.Tx)
		}
	case jsonrpc.NotifyOwnFundingLocked:
		if f.lockCB.OnOwnDepositLocked != nil && f.lockKind == types.ActionDeposit {
			f.lockCB.OnOwnDepositLocked()
		}
	case jsonrpc.NotifyFundingLocked:
		if f.lockCB.OnDepositLocked != nil && f.lockKind == types.ActionDeposit {
			f.lockCB.OnDepositLocked()
		}
		f.lockCB, f.lockKind = types.OnChainCallbacks{}, ""
		f.round = 1
		f.transition(StateOpen)
		f.emitStateChanged()
	case jsonrpc.NotifyOwnDepositLocked:
		if f.lockCB.OnOwnDepositLocked != nil {
			f.lockCB.OnOwnDepositLocked()
		}
	case jsonrpc.NotifyDepositLocked:
		if f.lockCB.OnDepositLocked != nil {
			f.lockCB.OnDepositLocked()
		}
		f.lockCB, f.lockKind = types.OnChainCallbacks{}, ""
		f.transition(StateOpen)
	case jsonrpc.NotifyOwnWithdrawLocked:
		if f.lockCB.OnOwnWithdrawLocked != nil {
			f.lockCB.OnOwnWithdrawLocked()
		}
	case jsonrpc.NotifyWithdrawLocked:
		if f.lockCB.OnWithdrawLocked != nil {
			f.lockCB.OnWithdrawLocked()
		}
		f.lockCB, f.lockKind = types.OnChainCallbacks{}, ""
		f.transition(StateOpen)
	}
}

// handleInfo handles the channels.info notification. During the open
// handshake an "open" event is the handshake's terminal success signal for
// sessions that skip funding locks (push-amount-only opens); during a
// reestablish it is the confirmation the session is live again.
func (f *FSM) handleInfo(frame jsonrpc.Frame) {
	var params infoParams
	if err := decode(frame.Params, &params); err != nil {
		f.emitError(err, &frame)
		return
	}
	if params.ChannelID != "" {
		f.channelID = params.ChannelID
	}
	if params.FsmID != "" {
		f.fsmID = params.FsmID
	}

	switch params.Event {
	case "open":
		if f.state == StateAwaitingReestablish {
			f.transition(StateOpen)
			if f.pending != nil && f.pending.kind == types.ActionReconnect {
				f.pending.finish(types.Accept(f.lastSignedTx), nil)
				f.startNext()
			}
			return
		}
		if f.round == 0 {
			f.round = 1
		}
		f.transition(StateOpen)
		f.emitStateChanged()
	case "died":
		f.transition(StateDied)
	case "channel_closed", "closed_confirmed":
		f.transition(StateClosed)
		if f.pending != nil && f.pending.kind == types.ActionShutdown {
			f.pending.finish(types.Accept(f.lastSignedTx), nil)
			f.startNext()
		}
	}
}
