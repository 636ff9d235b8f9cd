package sign

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aeternity/aesc-go/types"
)

// Broker wraps a Signer, serializing invocations so the FSM never issues a
// new signing request before the previous one has resolved.
type Broker struct {
	signer Signer
	log    *slog.Logger

	mu sync.Mutex
}

// New constructs a Broker around the caller-supplied Signer.
func New(signer Signer, log *slog.Logger) *Broker {
	if log == nil {
		log = slog.Default()
	}
	return &Broker{signer: signer, log: log.With("component", "sign-broker")}
}

// Sign invokes the untagged signing surface, serialized against any other
// in-flight signing call on this channel.
func (b *Broker) Sign(ctx context.Context, tx types.TxBlob, meta Meta) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Debug("requesting signature", "tagged", false)
	res, err := b.signer.Sign(ctx, tx, meta)
	if err != nil {
		b.log.Warn("signer returned error", "error", err)
		return Result{}, err
	}
	b.log.Debug("signature result", "aborted", res.Abort != nil, "rejected", res.Rejected)
	return res, nil
}

// SignTagged invokes the tagged signing surface, serialized against any
// other in-flight signing call on this channel.
func (b *Broker) SignTagged(ctx context.Context, tag types.SignTag, tx types.TxBlob, meta Meta) (Result, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.log.Debug("requesting signature", "tagged", true, "tag", tag)
	res, err := b.signer.SignTagged(ctx, tag, tx, meta)
	if err != nil {
		b.log.Warn("signer returned error", "tag", tag, "error", err)
		return Result{}, err
	}
	b.log.Debug("signature result", "tag", tag, "aborted", res.Abort != nil, "rejected", res.Rejected)
	return res, nil
}

// ToOutcome converts a sign Result that terminated an advance unsuccessfully
// into the caller-facing AdvanceOutcome (errorMessage is always
// "user-defined" for a caller abort).
func ToOutcome(res Result) types.AdvanceOutcome {
	if res.Abort != nil {
		return types.Aborted(*res.Abort)
	}
	return types.Rejected()
}
