package fsm

import (
	"context"
	"strings"

	"github.com/aeternity/aesc-go/event"
	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/sign"
	"github.com/aeternity/aesc-go/types"
)

// handleNotification is the single entry point for every inbound frame
// dispatched by the correlator, run serially on loop. It classifies the
// frame by method and, for sign requests, by tag: a prefix switch rather
// than a fixed map lookup, since sign requests carry a dynamic tag suffix.
func (f *FSM) handleNotification(frame jsonrpc.Frame) {
	switch {
	case strings.HasPrefix(frame.Method, "channels.sign."):
		tag := types.SignTag(strings.TrimPrefix(frame.Method, "channels.sign."))
		f.handleSignRequest(tag, frame)
	case frame.Method == jsonrpc.NotifyChannelOpen:
		f.handleInfo(frame)
	case frame.Method == jsonrpc.NotifyFundingCreated,
		frame.Method == jsonrpc.NotifyFundingSigned,
		frame.Method == jsonrpc.NotifyOnChainTx,
		frame.Method == jsonrpc.NotifyOwnFundingLocked,
		frame.Method == jsonrpc.NotifyFundingLocked,
		frame.Method == jsonrpc.NotifyOwnDepositLocked,
		frame.Method == jsonrpc.NotifyDepositLocked,
		frame.Method == jsonrpc.NotifyOwnWithdrawLocked,
		frame.Method == jsonrpc.NotifyWithdrawLocked:
		f.handleLockEvent(frame.Method, frame)
	case frame.Method == jsonrpc.NotifyUpdate:
		f.handleUpdateBroadcast(frame)
	case frame.Method == jsonrpc.NotifyError:
		f.handleErrorFrame(frame)
	case frame.Method == jsonrpc.NotifyMessage:
		f.handleMessage(frame)
	case frame.Method == jsonrpc.NotifyLeave:
		f.handleLeaveAck(frame)
	default:
		f.emitError(&types.UnknownChannelStateError{
			State:  string(f.state),
			Method: frame.Method,
		}, &frame)
	}
}

// beginAction sends the proposal for a newly started action and transitions
// into the matching awaiting* state, the co-signed off-chain advance
// structure shared by update/deposit/withdraw/createContract/callContract.
func (f *FSM) beginAction(pa *pendingAction) {
	pa.awaitingOwnSign = true
	ctx := context.Background()

	switch pa.kind {
	case types.ActionTransfer:
		f.transition(StateAwaitingUpdate)
		op := pa.update.Ops[0].Transfer
		_ = f.corr.Notify(ctx, jsonrpc.MethodUpdateNew, updateNewParams{From: op.From, To: op.To, Amount: op.Amount})
	case types.ActionDeposit:
		f.transition(StateAwaitingDeposit)
		f.lockCB, f.lockKind = pa.cb, types.ActionDeposit
		op := pa.update.Ops[0].Deposit
		_ = f.corr.Notify(ctx, jsonrpc.MethodDeposit, depositParams{Amount: op.Amount})
	case types.ActionWithdraw:
		f.transition(StateAwaitingWithdraw)
		f.lockCB, f.lockKind = pa.cb, types.ActionWithdraw
		op := pa.update.Ops[0].Withdrawal
		_ = f.corr.Notify(ctx, jsonrpc.MethodWithdraw, withdrawParams{Amount: op.Amount})
	case types.ActionNewContract:
		f.transition(StateAwaitingUpdate)
		op := pa.update.Ops[0].NewContract
		_ = f.corr.Notify(ctx, jsonrpc.MethodUpdateNewContract, newContractParams{
			Owner: op.Owner, Code: op.Code, CallData: op.CallData,
			Deposit: op.Deposit, VMVersion: op.VMVersion, ABIVersion: op.ABIVersion,
		})
	case types.ActionCallContract:
		f.transition(StateAwaitingUpdate)
		op := pa.update.Ops[0].CallContract
		_ = f.corr.Notify(ctx, jsonrpc.MethodUpdateCallContract, callContractParams{
			Caller: op.Caller, Contract: op.Contract, ABIVersion: op.ABIVersion,
			Amount: op.Amount, CallData: op.CallData, GasPrice: op.GasPrice, GasLimit: op.GasLimit,
		})
	case types.ActionShutdown:
		f.transition(StateAwaitingShutdownAck)
		_ = f.corr.Notify(ctx, jsonrpc.MethodShutdown, struct{}{})
	case types.ActionLeave:
		f.beginLeave(ctx, pa)
	case types.ActionForceProgress:
		f.beginForceProgress(ctx, pa)
	case types.ActionReconnect:
		f.beginReconnect(ctx, pa)
	}
}

// handleSignRequest routes an inbound channels.sign.<tag> notification to
// either the untagged signer, if it answers our own pending action, or the
// tagged signer, if we are the passive co-signer for the counterparty's
// action.
func (f *FSM) handleSignRequest(tag types.SignTag, frame jsonrpc.Frame) {
	switch tag {
	case types.SignTagInitiatorSign, types.SignTagResponderSign:
		f.handleOpenSignRequest(tag, frame)
		return
	}

	var params signRequestParams
	if err := decode(frame.Params, &params); err != nil {
		f.emitError(err, &frame)
		return
	}

	if f.pending != nil && f.pending.awaitingOwnSign {
		pa := f.pending
		pa.awaitingOwnSign = false
		meta := sign.Meta{Update: &pa.update, Round: f.round}
		go func() {
			res, err := f.broker.Sign(context.Background(), params.Tx, meta)
			f.post(func() { f.finishOwnSign(pa, tag, res, err) })
		}()
		return
	}

	// Passive co-signer: the node is asking us to countersign the
	// counterparty's proposal.
	meta := sign.Meta{Update: params.Update, Round: f.round}
	go func() {
		res, err := f.broker.SignTagged(context.Background(), tag, params.Tx, meta)
		f.post(func() { f.finishTaggedSign(tag, res, err) })
	}()
}

func (f *FSM) finishOwnSign(pa *pendingAction, tag types.SignTag, res sign.Result, err error) {
	if err != nil {
		pa.finish(types.Rejected(), err)
		f.startNext()
		return
	}
	if res.Rejected || res.Abort != nil {
		f.sendSignReply(context.Background(), jsonrpc.SignRequestMethod(string(tag)), res)
		pa.finish(sign.ToOutcome(res), nil)
		f.startNext()
		return
	}
	if pa.kind == types.ActionShutdown {
		// Shutdown resolves with this close tx once the node reports the
		// channel closed (handleInfo).
		f.lastSignedTx = res.SignedTx
	}
	f.sendSignReply(context.Background(), jsonrpc.SignRequestMethod(string(tag)), res)
	// The node still has to confirm with the counterparty's countersignature
	// and broadcast channels.update; pa stays pending until that arrives.
}

func (f *FSM) finishTaggedSign(tag types.SignTag, res sign.Result, err error) {
	if err != nil {
		f.emitError(err, nil)
		return
	}
	f.sendSignReply(context.Background(), jsonrpc.SignRequestMethod(string(tag)), res)
}

// handleUpdateBroadcast handles the channels.update notification that
// confirms a co-signed advance has fully settled: both signatures are in
// and the node has adopted the new off-chain state.
func (f *FSM) handleUpdateBroadcast(frame jsonrpc.Frame) {
	var params signedParams
	if err := decode(frame.Params, &params); err != nil {
		f.emitError(err, &frame)
		return
	}
	if f.round > 0 && params.Tx == f.lastSignedTx {
		// Redelivery of an update already applied: the signer was already
		// invoked and round already advanced for this tx, so this frame is
		// a no-op rather than a second advance.
		return
	}
	f.round++
	f.lastSignedTx = params.Tx
	f.emitStateChanged()

	if f.pending == nil {
		// A counterparty-initiated advance we only passively co-signed.
		f.transition(StateOpen)
		return
	}

	outcome := types.Accept(params.Tx)
	if f.pending.kind == types.ActionNewContract {
		outcome.Address = deriveContractAddress(f.pending.update.Ops[0].NewContract.Owner, f.round)
	}
	f.pending.finish(outcome, nil)
	f.transition(StateOpen)
	f.startNext()
}

// handleErrorFrame handles a channels.error notification: it fails the
// pending action, if any, classifies the failure, and otherwise emits it
// on the event bus for an error received out of context.
func (f *FSM) handleErrorFrame(frame jsonrpc.Frame) {
	var params errorParams
	if err := decode(frame.Params, &params); err != nil {
		f.emitError(err, &frame)
		return
	}
	nodeErr := &types.NodeError{Code: params.Code, Message: params.Message}
	if f.pending != nil && f.pending.kind == types.ActionReconnect {
		f.pending.finish(types.AdvanceOutcome{}, &types.UnknownChannelStateError{
			State:   string(f.state),
			Method:  jsonrpc.MethodReestablish,
			Message: nodeErr.Error(),
		})
		f.transition(StateDisconnected)
		f.startNext()
		return
	}
	if f.pending != nil {
		outcome := types.Rejected()
		if params.Message == types.ErrorUserDefined {
			outcome = types.Aborted(params.Code)
		}
		f.pending.finish(outcome, nil)
		f.transition(StateOpen)
		f.startNext()
		return
	}
	f.emitError(&types.ChannelIncomingMessageError{Method: jsonrpc.NotifyError, Node: nodeErr}, &frame)
}

// handleMessage handles an inbound channels.message notification, the
// node's free-form application messaging.
func (f *FSM) handleMessage(frame jsonrpc.Frame) {
	var params messageParams
	if err := decode(frame.Params, &params); err != nil {
		f.emitError(err, &frame)
		return
	}
	f.bus.Emit(event.Message, event.MessagePayload{From: params.From, Content: params.Message})
}
