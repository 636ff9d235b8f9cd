package fsm_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/aeternity/aesc-go/event"
	"github.com/aeternity/aesc-go/fsm"
	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/rpc"
	"github.com/aeternity/aesc-go/sign"
	"github.com/aeternity/aesc-go/transport"
	"github.com/aeternity/aesc-go/types"
)

// autoAcceptSigner signs whatever it is asked to, tagged or not, returning
// the tx blob unchanged (these tests never inspect the signature itself).
type autoAcceptSigner struct{}

func (autoAcceptSigner) Sign(ctx context.Context, tx types.TxBlob, meta sign.Meta) (sign.Result, error) {
	return sign.Signed(tx), nil
}

func (autoAcceptSigner) SignTagged(ctx context.Context, tag types.SignTag, tx types.TxBlob, meta sign.Meta) (sign.Result, error) {
	return sign.Signed(tx), nil
}

// harness wires an FSM to one end of an in-memory pipe; the test drives the
// other end directly, standing in for the node.
type harness struct {
	t    *testing.T
	fsm  *fsm.FSM
	bus  *event.Bus
	node transport.Transport
}

func newHarness(t *testing.T, cfg fsm.Config) *harness {
	t.Helper()
	clientSide, nodeSide := transport.NewPipe()

	bus := event.New(nil)
	broker := sign.New(autoAcceptSigner{}, nil)

	h := &harness{t: t, bus: bus, node: nodeSide}
	disp := &testDispatcher{}
	corr := rpc.New(clientSide, disp, nil)
	h.fsm = fsm.New(cfg, corr, broker, bus, nil)
	disp.fsm = h.fsm

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go h.fsm.Run(ctx)
	go corr.Run(ctx)
	return h
}

type testDispatcher struct{ fsm *fsm.FSM }

func (d *testDispatcher) Dispatch(f jsonrpc.Frame) { d.fsm.Dispatch(f) }

// recvNode reads the next frame the FSM sent toward the node, failing the
// test if none arrives within the timeout.
func (h *harness) recvNode() jsonrpc.Frame {
	h.t.Helper()
	select {
	case f := <-h.node.Inbound():
		return f
	case <-time.After(2 * time.Second):
		h.t.Fatal("timed out waiting for outbound frame")
		return jsonrpc.Frame{}
	}
}

// sendInfo emits a channels.info notification from the node.
func (h *harness) sendInfo(event string) {
	h.t.Helper()
	raw, err := json.Marshal(struct {
		Event string `json:"event"`
	}{Event: event})
	require.NoError(h.t, err)
	require.NoError(h.t, h.node.Send(context.Background(), jsonrpc.Frame{
		JSONRPC: jsonrpc.Version, Method: jsonrpc.NotifyChannelOpen, Params: raw,
	}))
}

// sendInfoFull emits a channels.info notification carrying channel/fsm ids,
// as the node does once it has assigned them.
func (h *harness) sendInfoFull(event string, channelID types.ChannelID, fsmID types.FsmID) {
	h.t.Helper()
	raw, err := json.Marshal(struct {
		Event     string          `json:"event"`
		ChannelID types.ChannelID `json:"channel_id,omitempty"`
		FsmID     types.FsmID     `json:"fsm_id,omitempty"`
	}{Event: event, ChannelID: channelID, FsmID: fsmID})
	require.NoError(h.t, err)
	require.NoError(h.t, h.node.Send(context.Background(), jsonrpc.Frame{
		JSONRPC: jsonrpc.Version, Method: jsonrpc.NotifyChannelOpen, Params: raw,
	}))
}

// sendResult answers an outbound request frame with the given id, as a
// correlated JSON-RPC response carrying result rather than a notification.
func (h *harness) sendResult(id string, result interface{}) {
	h.t.Helper()
	raw, err := json.Marshal(result)
	require.NoError(h.t, err)
	require.NoError(h.t, h.node.Send(context.Background(), jsonrpc.Frame{
		JSONRPC: jsonrpc.Version, ID: id, Result: raw,
	}))
}

// sendNotify emits an arbitrary notification from the node.
func (h *harness) sendNotify(method string, params interface{}) {
	h.t.Helper()
	raw, err := json.Marshal(params)
	require.NoError(h.t, err)
	require.NoError(h.t, h.node.Send(context.Background(), jsonrpc.Frame{
		JSONRPC: jsonrpc.Version, Method: method, Params: raw,
	}))
}

func (h *harness) awaitStatus(want types.Status) {
	h.t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if h.fsm.Status() == want {
			return
		}
		select {
		case <-time.After(5 * time.Millisecond):
		case <-deadline:
			h.t.Fatalf("timed out waiting for status %s, last was %s", want, h.fsm.Status())
		}
	}
}

func basicConfig() fsm.Config {
	return fsm.Config{
		Role:            fsm.RoleInitiator,
		InitiatorID:     "ak_initiator",
		ResponderID:     "ak_responder",
		InitiatorAmount: types.NewAmount(1000),
		ResponderAmount: types.NewAmount(1000),
		ChannelReserve:  types.NewAmount(10),
		LockPeriod:      10,
	}
}

func TestOpenHandshakeReachesOpen(t *testing.T) {
	cfg := basicConfig()
	h := newHarness(t, cfg)

	require.NoError(t, h.fsm.Initialize(context.Background()))

	init := h.recvNode()
	require.Equal(t, "channels.initialize", init.Method)

	h.sendNotify(jsonrpc.SignRequestMethod(string(types.SignTagInitiatorSign)), struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_unsigned"})

	signed := h.recvNode()
	require.Equal(t, jsonrpc.SignRequestMethod(string(types.SignTagInitiatorSign)), signed.Method)

	h.sendNotify(jsonrpc.NotifyOnChainTx, struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_onchain"})
	h.sendNotify(jsonrpc.NotifyOwnFundingLocked, struct{}{})
	h.sendNotify(jsonrpc.NotifyFundingLocked, struct{}{})

	h.awaitStatus(types.StatusOpen)
	require.Equal(t, types.Round(1), h.fsm.Round())
}

func TestUpdateAdvanceAccepted(t *testing.T) {
	cfg := basicConfig()
	h := newHarness(t, cfg)
	require.NoError(t, h.fsm.Initialize(context.Background()))
	h.recvNode() // channels.initialize
	h.sendNotify(jsonrpc.SignRequestMethod(string(types.SignTagInitiatorSign)), struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_unsigned"})
	h.recvNode() // signed reply
	h.sendNotify(jsonrpc.NotifyOnChainTx, struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_onchain"})
	h.sendNotify(jsonrpc.NotifyOwnFundingLocked, struct{}{})
	h.sendNotify(jsonrpc.NotifyFundingLocked, struct{}{})
	h.awaitStatus(types.StatusOpen)

	var outcome types.AdvanceOutcome
	var advanceErr error
	done := make(chan struct{})
	go func() {
		outcome, advanceErr = h.fsm.Update(context.Background(), types.OffChainTransfer{
			From: "ak_initiator", To: "ak_responder", Amount: types.NewAmount(5),
		})
		close(done)
	}()

	propose := h.recvNode()
	require.Equal(t, "channels.update.new", propose.Method)

	h.sendNotify(jsonrpc.SignRequestMethod("update"), struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_update_unsigned"})

	h.recvNode() // signed reply

	h.sendNotify(jsonrpc.NotifyUpdate, struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_update_signed"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Update to resolve")
	}
	require.NoError(t, advanceErr)
	require.True(t, outcome.Accepted)
	require.Equal(t, types.TxBlob("tx_update_signed"), outcome.SignedTx)
	require.Equal(t, types.Round(2), h.fsm.Round())

	// A redelivered channels.update for the tx just applied must not
	// double-advance the round.
	h.sendNotify(jsonrpc.NotifyUpdate, struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_update_signed"})
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, types.Round(2), h.fsm.Round())
}

func TestUpdateAdvanceAborted(t *testing.T) {
	cfg := basicConfig()
	h := newHarness(t, cfg)
	require.NoError(t, h.fsm.Initialize(context.Background()))
	h.recvNode()
	h.sendNotify(jsonrpc.SignRequestMethod(string(types.SignTagInitiatorSign)), struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_unsigned"})
	h.recvNode()
	h.sendNotify(jsonrpc.NotifyOnChainTx, struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_onchain"})
	h.sendNotify(jsonrpc.NotifyOwnFundingLocked, struct{}{})
	h.sendNotify(jsonrpc.NotifyFundingLocked, struct{}{})
	h.awaitStatus(types.StatusOpen)

	var outcome types.AdvanceOutcome
	done := make(chan struct{})
	go func() {
		outcome, _ = h.fsm.Update(context.Background(), types.OffChainTransfer{
			From: "ak_initiator", To: "ak_responder", Amount: types.NewAmount(5),
		})
		close(done)
	}()

	h.recvNode() // channels.update.new

	// The counterparty's responder declined; the node relays a
	// user-defined abort code back to us instead of a sign request.
	h.sendNotify(jsonrpc.NotifyError, struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: 42, Message: types.ErrorUserDefined})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Update to resolve")
	}
	require.False(t, outcome.Accepted)
	require.NotNil(t, outcome.ErrorCode)
	require.Equal(t, 42, *outcome.ErrorCode)
}

func TestUpdateRejectedWithoutAbortCode(t *testing.T) {
	cfg := basicConfig()
	h := newHarness(t, cfg)
	require.NoError(t, h.fsm.Initialize(context.Background()))
	h.recvNode()
	h.sendNotify(jsonrpc.SignRequestMethod(string(types.SignTagInitiatorSign)), struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_unsigned"})
	h.recvNode()
	h.sendNotify(jsonrpc.NotifyOnChainTx, struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_onchain"})
	h.sendNotify(jsonrpc.NotifyOwnFundingLocked, struct{}{})
	h.sendNotify(jsonrpc.NotifyFundingLocked, struct{}{})
	h.awaitStatus(types.StatusOpen)

	var outcome types.AdvanceOutcome
	done := make(chan struct{})
	go func() {
		outcome, _ = h.fsm.Update(context.Background(), types.OffChainTransfer{
			From: "ak_initiator", To: "ak_responder", Amount: types.NewAmount(5),
		})
		close(done)
	}()

	h.recvNode() // channels.update.new

	// A plain conflict, with no caller-defined abort code: a bare rejection
	// rather than an aborted advance.
	h.sendNotify(jsonrpc.NotifyError, struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: 1, Message: "conflict"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Update to resolve")
	}
	require.False(t, outcome.Accepted)
	require.Nil(t, outcome.ErrorCode)
	require.Equal(t, types.StatusOpen, h.fsm.Status())
}

func TestShutdownClosesChannel(t *testing.T) {
	cfg := basicConfig()
	h := newHarness(t, cfg)
	require.NoError(t, h.fsm.Initialize(context.Background()))
	h.recvNode()
	h.sendNotify(jsonrpc.SignRequestMethod(string(types.SignTagInitiatorSign)), struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_unsigned"})
	h.recvNode()
	h.sendNotify(jsonrpc.NotifyOnChainTx, struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_onchain"})
	h.sendNotify(jsonrpc.NotifyOwnFundingLocked, struct{}{})
	h.sendNotify(jsonrpc.NotifyFundingLocked, struct{}{})
	h.awaitStatus(types.StatusOpen)

	var closeTx types.TxBlob
	var shutdownErr error
	done := make(chan struct{})
	go func() {
		closeTx, shutdownErr = h.fsm.Shutdown(context.Background())
		close(done)
	}()

	shutdown := h.recvNode()
	require.Equal(t, jsonrpc.MethodShutdown, shutdown.Method)

	h.sendNotify(jsonrpc.SignRequestMethod(string(types.SignTagShutdownSignAck)), struct {
		Tx types.TxBlob `json:"tx"`
	}{Tx: "tx_shutdown_unsigned"})

	h.recvNode() // signed reply

	h.sendInfo("channel_closed")

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Shutdown to resolve")
	}
	require.NoError(t, shutdownErr)
	require.Equal(t, types.TxBlob("tx_shutdown_unsigned"), closeTx)
	require.Equal(t, types.StatusClosed, h.fsm.Status())
}

func TestReconnectRejectedWhenNodeHasNoSuchFSM(t *testing.T) {
	cfg := basicConfig()
	cfg.ExistingChannelID = "ch_existing"
	cfg.ExistingFsmID = "fsm_existing"
	h := newHarness(t, cfg)
	require.NoError(t, h.fsm.Initialize(context.Background()))
	h.recvNode() // channels.reestablish

	var reconnectErr error
	done := make(chan struct{})
	go func() {
		reconnectErr = h.fsm.Reconnect(context.Background())
		close(done)
	}()

	h.recvNode() // channels.reestablish resubmitted by Reconnect

	h.sendNotify(jsonrpc.NotifyError, struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: 1, Message: "no such FSM"})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Reconnect to resolve")
	}

	var unknownState *types.UnknownChannelStateError
	require.ErrorAs(t, reconnectErr, &unknownState)
	require.Equal(t, types.StatusDisconnected, h.fsm.Status())
}

func TestReconnectAfterLeavePreservesFsmID(t *testing.T) {
	cfg := basicConfig()
	cfg.ExistingChannelID = "ch_existing"
	cfg.ExistingFsmID = "fsm_existing"
	h := newHarness(t, cfg)
	require.NoError(t, h.fsm.Initialize(context.Background()))
	h.recvNode() // channels.reestablish

	h.sendInfoFull("open", "ch_existing", "fsm_existing")
	h.awaitStatus(types.StatusOpen)
	fsmIDBefore := h.fsm.FsmID()
	require.Equal(t, types.FsmID("fsm_existing"), fsmIDBefore)

	var leaveResult fsm.LeaveResult
	var leaveErr error
	leaveDone := make(chan struct{})
	go func() {
		leaveResult, leaveErr = h.fsm.Leave(context.Background())
		close(leaveDone)
	}()

	leaveFrame := h.recvNode() // channels.leave
	require.Equal(t, jsonrpc.MethodLeave, leaveFrame.Method)
	h.sendResult(leaveFrame.ID, struct {
		ChannelID types.ChannelID `json:"channel_id"`
		Tx        types.TxBlob    `json:"tx"`
	}{ChannelID: "ch_existing", Tx: "tx_last_signed"})

	select {
	case <-leaveDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Leave to resolve")
	}
	require.NoError(t, leaveErr)
	require.Equal(t, types.ChannelID("ch_existing"), leaveResult.ChannelID)
	require.Equal(t, types.StatusDisconnected, h.fsm.Status())

	var reconnectErr error
	reconnectDone := make(chan struct{})
	go func() {
		reconnectErr = h.fsm.Reconnect(context.Background())
		close(reconnectDone)
	}()

	h.recvNode() // channels.reestablish resubmitted by Reconnect
	h.sendInfoFull("open", "ch_existing", "fsm_existing")

	select {
	case <-reconnectDone:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for Reconnect to resolve")
	}
	require.NoError(t, reconnectErr)
	require.Equal(t, types.StatusOpen, h.fsm.Status())
	require.Equal(t, fsmIDBefore, h.fsm.FsmID())
}
