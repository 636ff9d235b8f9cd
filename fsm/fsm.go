package fsm

import (
	"context"
	"log/slog"

	"github.com/aeternity/aesc-go/event"
	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/rpc"
	"github.com/aeternity/aesc-go/sign"
	"github.com/aeternity/aesc-go/types"
)

// pendingAction is the single in-flight caller action a channel may have at
// any time, together with whatever queued actions are waiting for it to
// finish (back-pressure: queued FIFO, one at a time).
type pendingAction struct {
	kind types.ActionKind

	update types.Update
	cb     types.OnChainCallbacks

	// awaitingOwnSign is true once this action has sent its proposal to the
	// node and is waiting for the node to ask us, the initiator of this
	// advance, to sign via the untagged signer.
	awaitingOwnSign bool

	outcome       types.AdvanceOutcome
	forceProgress ForceProgressResult
	leave         LeaveResult
	err           error

	done chan struct{}
}

func newPendingAction(kind types.ActionKind) *pendingAction {
	return &pendingAction{kind: kind, done: make(chan struct{})}
}

func (pa *pendingAction) finish(outcome types.AdvanceOutcome, err error) {
	pa.outcome, pa.err = outcome, err
	close(pa.done)
}

// ForceProgressResult is the response to a forceProgress action: the
// serialized unilateral on-chain transaction and its hash.
type ForceProgressResult struct {
	Tx   types.TxBlob
	Hash string
}

// LeaveResult is the response to a leave action: the id of the channel
// being left and the last mutually signed off-chain state.
type LeaveResult struct {
	ChannelID types.ChannelID
	SignedTx  types.TxBlob
}

// FSM drives a single channel session end to end. All mutable fields below
// are touched only from the loop goroutine started by Run; every other
// method communicates with loop by posting a closure onto cmd and waiting on
// a per-call result channel, never by acquiring a lock.
type FSM struct {
	cfg    Config
	corr   *rpc.Correlator
	broker *sign.Broker
	bus    *event.Bus
	log    *slog.Logger

	cmd  chan func()
	done chan struct{}

	// loop-owned state; do not touch outside a cmd closure.
	state         State
	round         types.Round
	channelID     types.ChannelID
	fsmID         types.FsmID
	lastSignedTx  types.TxBlob
	pending       *pendingAction
	queue         []*pendingAction

	// lockCB/lockKind track the on-chain callback bundle for whichever
	// deposit/withdraw advance most recently reached its on-chain phase.
	// They outlive pa.done (the off-chain co-sign can finish, and the next
	// queued action start, before the on-chain locks are observed), so they
	// are tracked separately from pending rather than read off it.
	lockCB   types.OnChainCallbacks
	lockKind types.ActionKind
}

// New constructs an FSM for the given config. Run must be called before the
// FSM can process anything.
func New(cfg Config, corr *rpc.Correlator, broker *sign.Broker, bus *event.Bus, log *slog.Logger) *FSM {
	if log == nil {
		log = slog.Default()
	}
	initial := StateConnecting
	if cfg.ExistingFsmID != "" {
		initial = StateAwaitingReestablish
	}
	return &FSM{
		cfg:    cfg,
		corr:   corr,
		broker: broker,
		bus:    bus,
		log:    log.With("component", "fsm", "role", cfg.Role),
		cmd:    make(chan func(), 16),
		done:   make(chan struct{}),
		state:  initial,
	}
}

// Run starts the FSM's serial executor loop. It blocks until ctx is
// cancelled or Close is called, and should be run in its own goroutine
// alongside the Correlator's Run loop.
func (f *FSM) Run(ctx context.Context) {
	for {
		select {
		case fn := <-f.cmd:
			fn()
		case <-ctx.Done():
			f.transition(StateDisconnected)
			close(f.done)
			return
		case <-f.done:
			return
		}
	}
}

// Close stops the loop. Any action still waiting on its done channel
// receives types.ChannelConnectionError.
func (f *FSM) Close() {
	select {
	case <-f.done:
	default:
		close(f.done)
	}
}

// post enqueues fn to run on the loop goroutine. fn must not block; any
// genuinely slow step (a signer call, a network round-trip) must spawn its
// own goroutine and post its continuation back via post when it resolves.
func (f *FSM) post(fn func()) {
	select {
	case f.cmd <- fn:
	case <-f.done:
	}
}

// Dispatch implements rpc.Dispatcher; it is called from the Correlator's Run
// goroutine for every inbound notification and simply hands it to loop.
func (f *FSM) Dispatch(frame jsonrpc.Frame) {
	f.post(func() { f.handleNotification(frame) })
}

// Status returns the caller-visible status, safe to call from any
// goroutine: it posts to loop and waits for the read, matching every other
// FSM accessor's threading discipline.
func (f *FSM) Status() types.Status {
	resultCh := make(chan types.Status, 1)
	f.post(func() { resultCh <- status(f.state) })
	select {
	case s := <-resultCh:
		return s
	case <-f.done:
		return types.StatusDisconnected
	}
}

// Round returns the current off-chain round.
func (f *FSM) Round() types.Round {
	resultCh := make(chan types.Round, 1)
	f.post(func() { resultCh <- f.round })
	select {
	case r := <-resultCh:
		return r
	case <-f.done:
		return 0
	}
}

// FsmID returns the node-assigned fsm session id, empty until the open
// handshake or a reestablish has completed at least once.
func (f *FSM) FsmID() types.FsmID {
	resultCh := make(chan types.FsmID, 1)
	f.post(func() { resultCh <- f.fsmID })
	select {
	case id := <-resultCh:
		return id
	case <-f.done:
		return ""
	}
}

// transition changes state and emits StatusChanged iff the caller-visible
// Status actually changed, so a status fires exactly once per transition.
func (f *FSM) transition(next State) {
	old := status(f.state)
	f.state = next
	newStatus := status(next)
	if newStatus != old {
		f.bus.Emit(event.StatusChanged, event.StatusChangedPayload{Old: old, New: newStatus})
	}
}

// emitStateChanged reports a round advance.
func (f *FSM) emitStateChanged() {
	f.bus.Emit(event.StateChanged, event.StateChangedPayload{Round: f.round})
}

// emitError reports an error observed while handling an inbound frame.
func (f *FSM) emitError(err error, frame *jsonrpc.Frame) {
	f.log.Warn("channel error", "error", err)
	f.bus.Emit(event.Error, event.ErrorPayload{Err: err, Frame: frame})
}

// startNext dequeues and begins the next queued action, if any, once the
// current one has finished.
func (f *FSM) startNext() {
	f.pending = nil
	if len(f.queue) == 0 {
		return
	}
	next := f.queue[0]
	f.queue = f.queue[1:]
	f.pending = next
	f.beginAction(next)
}

// submit enqueues a new action, starting it immediately if the channel is
// idle or appending it to the FIFO queue otherwise, so at most one action
// is ever in flight.
func (f *FSM) submit(pa *pendingAction) {
	if f.pending != nil {
		f.queue = append(f.queue, pa)
		return
	}
	f.pending = pa
	f.beginAction(pa)
}

// await blocks the caller's goroutine (never loop's) until pa finishes.
func await[T any](f *FSM, pa *pendingAction, ctx context.Context, read func(*pendingAction) T) (T, error) {
	select {
	case <-pa.done:
		return read(pa), pa.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-f.done:
		var zero T
		return zero, &types.ChannelConnectionError{}
	}
}
