package fsm

import (
	"context"
	"crypto/sha256"
	"encoding/binary"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/types"
)

// deriveContractAddress computes the off-chain contract's address as a
// deterministic function of its owner and the round the createContract
// advance settled at, reproduced here because address derivation is part
// of the client's in-scope surface, unlike general transaction encoding
// which belongs to an external tx builder/codec. It is not byte-compatible
// with the node's actual on-chain contract pubkey derivation (which
// additionally folds in the owner's account nonce and network-specific
// RLP framing); see DESIGN.md for the simplification.
func deriveContractAddress(owner types.Address, round types.Round) types.Address {
	h := sha256.New()
	h.Write([]byte(owner))
	var roundBytes [8]byte
	binary.BigEndian.PutUint64(roundBytes[:], uint64(round))
	h.Write(roundBytes[:])
	sum := h.Sum(nil)
	return types.Address(types.PrefixContract + encodeBase58ish(sum))
}

// encodeBase58ish renders bytes in the alphabet æternity addresses use.
// Full base58check (with its network-specific checksum) lives in the
// external tx codec; this reproduces only enough of it to produce a
// plausible, stable-looking address string for derived contract ids.
func encodeBase58ish(b []byte) string {
	const alphabet = "123456789ABCDEFGHJKLMNPQRSTUVWXYZabcdefghijkmnopqrstuvwxyz"
	var out []byte
	for _, c := range b {
		out = append(out, alphabet[int(c)%len(alphabet)])
	}
	return string(out)
}

// Update submits a transfer advance and blocks the calling goroutine (never
// loop's) until the advance settles or ctx is done.
func (f *FSM) Update(ctx context.Context, op types.OffChainTransfer) (types.AdvanceOutcome, error) {
	pa := newPendingAction(types.ActionTransfer)
	pa.update = types.Update{Ops: []types.UpdateOp{{Transfer: &op}}}
	f.post(func() { f.submit(pa) })
	return await(f, pa, ctx, func(p *pendingAction) types.AdvanceOutcome { return p.outcome })
}

// Deposit submits a deposit advance.
func (f *FSM) Deposit(ctx context.Context, op types.OffChainDeposit, cb types.OnChainCallbacks) (types.AdvanceOutcome, error) {
	pa := newPendingAction(types.ActionDeposit)
	pa.update = types.Update{Ops: []types.UpdateOp{{Deposit: &op}}}
	pa.cb = cb
	f.post(func() { f.submit(pa) })
	return await(f, pa, ctx, func(p *pendingAction) types.AdvanceOutcome { return p.outcome })
}

// Withdraw submits a withdrawal advance.
func (f *FSM) Withdraw(ctx context.Context, op types.OffChainWithdrawal, cb types.OnChainCallbacks) (types.AdvanceOutcome, error) {
	pa := newPendingAction(types.ActionWithdraw)
	pa.update = types.Update{Ops: []types.UpdateOp{{Withdrawal: &op}}}
	pa.cb = cb
	f.post(func() { f.submit(pa) })
	return await(f, pa, ctx, func(p *pendingAction) types.AdvanceOutcome { return p.outcome })
}

// CreateContract submits a contract-deployment advance; on acceptance the
// outcome's Address carries the new contract's derived address.
func (f *FSM) CreateContract(ctx context.Context, op types.OffChainNewContract) (types.AdvanceOutcome, error) {
	pa := newPendingAction(types.ActionNewContract)
	pa.update = types.Update{Ops: []types.UpdateOp{{NewContract: &op}}}
	f.post(func() { f.submit(pa) })
	return await(f, pa, ctx, func(p *pendingAction) types.AdvanceOutcome { return p.outcome })
}

// CallContract submits a contract-call advance.
func (f *FSM) CallContract(ctx context.Context, op types.OffChainCallContract) (types.AdvanceOutcome, error) {
	pa := newPendingAction(types.ActionCallContract)
	pa.update = types.Update{Ops: []types.UpdateOp{{CallContract: &op}}}
	f.post(func() { f.submit(pa) })
	return await(f, pa, ctx, func(p *pendingAction) types.AdvanceOutcome { return p.outcome })
}

// beginForceProgress issues the unilateral force-progress request. Unlike
// the co-signed advances, force progress needs no signature round-trip: the
// node directly returns the serialized on-chain transaction and its hash, so
// this uses Call, spawned off loop so the network round-trip cannot block
// another channel event from draining.
func (f *FSM) beginForceProgress(ctx context.Context, pa *pendingAction) {
	f.transition(StateAwaitingOnChainTx)
	go func() {
		raw, err := f.corr.Call(ctx, jsonrpc.MethodForceProgress, forceProgressParams{Update: pa.update})
		f.post(func() { f.finishForceProgress(pa, raw, err) })
	}()
}

func (f *FSM) finishForceProgress(pa *pendingAction, raw []byte, err error) {
	if err != nil {
		pa.err = err
		close(pa.done)
		f.transition(StateOpen)
		f.startNext()
		return
	}
	var result forceProgressResultParams
	if err := decode(raw, &result); err != nil {
		pa.err = err
		close(pa.done)
		f.transition(StateOpen)
		f.startNext()
		return
	}
	pa.forceProgress = ForceProgressResult{Tx: result.Tx, Hash: result.Hash}
	close(pa.done)
	f.transition(StateAwaitingOnChainConfirmation)
	f.startNext()
}

// ForceProgress unilaterally advances the channel on-chain, bypassing the
// counterparty; used to settle a dispute.
func (f *FSM) ForceProgress(ctx context.Context, update types.Update) (ForceProgressResult, error) {
	pa := newPendingAction(types.ActionForceProgress)
	pa.update = update
	f.post(func() { f.submit(pa) })
	return await(f, pa, ctx, func(p *pendingAction) ForceProgressResult { return p.forceProgress })
}
