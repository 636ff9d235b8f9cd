package sign

import (
	"context"

	"github.com/aeternity/aesc-go/types"
)

// Meta accompanies a signing request with enough context for the caller's
// Signer to decide how, or whether, to authorize it.
type Meta struct {
	// Update is populated when the node is asking for a signature over an
	// off-chain update (update/deposit/withdraw/contract); it lets the
	// signer inspect the proposed sub-operations before authorizing, e.g. a
	// responder's tagged signer invoked with a single OffChainTransfer.
	Update *types.Update
	Round  types.Round
}

// Result is the normalized outcome of a signing request: a signed
// transaction blob, a caller-defined numeric abort code, or a generic
// rejection. At most one of SignedTx/Abort is meaningful; Rejected with
// neither set is the "null" case.
type Result struct {
	SignedTx types.TxBlob
	Abort    *int
	Rejected bool
}

// Signed builds a Result carrying a signed transaction.
func Signed(tx types.TxBlob) Result {
	return Result{SignedTx: tx}
}

// Abort builds a Result carrying a caller-defined numeric abort code.
func Abort(code int) Result {
	c := code
	return Result{Abort: &c}
}

// Reject builds a Result for a generic rejection with no code.
func Reject() Result {
	return Result{Rejected: true}
}

// Signer is the caller-supplied collaborator that authorizes transactions
// on the local participant's behalf. Sign is used when the caller
// deliberately initiates an action and is expected to sign whatever the
// node asks for; SignTagged is used for node-initiated requests, where the
// tag tells the caller why they are being asked to sign.
type Signer interface {
	Sign(ctx context.Context, tx types.TxBlob, meta Meta) (Result, error)
	SignTagged(ctx context.Context, tag types.SignTag, tx types.TxBlob, meta Meta) (Result, error)
}

// SignerFunc and TaggedSignerFunc let small test/example signers be
// written as plain functions; Broker takes a full Signer so most callers
// will use the Func adapter below.
type SignerFunc func(ctx context.Context, tx types.TxBlob, meta Meta) (Result, error)
type TaggedSignerFunc func(ctx context.Context, tag types.SignTag, tx types.TxBlob, meta Meta) (Result, error)

// Funcs adapts a pair of plain functions into a Signer.
type Funcs struct {
	SignFunc       SignerFunc
	SignTaggedFunc TaggedSignerFunc
}

func (f Funcs) Sign(ctx context.Context, tx types.TxBlob, meta Meta) (Result, error) {
	return f.SignFunc(ctx, tx, meta)
}

func (f Funcs) SignTagged(ctx context.Context, tag types.SignTag, tx types.TxBlob, meta Meta) (Result, error) {
	return f.SignTaggedFunc(ctx, tag, tx, meta)
}
