package transport

import (
	"context"
	"sync"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/types"
)

// NewPipe returns two Transports directly wired to each other: frames sent
// on one arrive on the other's Inbound channel. It replaces a real
// connection in tests, in place of a net.Pipe-based TCP loopback. Closing
// either end severs both, the same way a dropped socket ends the session
// for both participants.
func NewPipe() (a, b Transport) {
	link := &pipeLink{
		ab:     make(chan jsonrpc.Frame, 64),
		ba:     make(chan jsonrpc.Frame, 64),
		broken: make(chan struct{}),
	}
	pa := &pipeEnd{link: link, out: link.ab, in: link.ba, closed: make(chan error, 1)}
	pb := &pipeEnd{link: link, out: link.ba, in: link.ab, closed: make(chan error, 1)}
	link.ends = []*pipeEnd{pa, pb}
	return pa, pb
}

type pipeLink struct {
	mu     sync.Mutex
	ab, ba chan jsonrpc.Frame
	broken chan struct{}
	done   bool
	ends   []*pipeEnd
}

func (l *pipeLink) sever() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.done {
		return
	}
	l.done = true
	close(l.broken)
	close(l.ab)
	close(l.ba)
	for _, e := range l.ends {
		e.closed <- nil
		close(e.closed)
	}
}

type pipeEnd struct {
	link   *pipeLink
	out    chan<- jsonrpc.Frame
	in     <-chan jsonrpc.Frame
	closed chan error
}

func (p *pipeEnd) Send(ctx context.Context, f jsonrpc.Frame) error {
	p.link.mu.Lock()
	done := p.link.done
	p.link.mu.Unlock()
	if done {
		return &types.ChannelConnectionError{Cause: nil}
	}
	select {
	case p.out <- f:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-p.link.broken:
		return &types.ChannelConnectionError{Cause: nil}
	}
}

func (p *pipeEnd) Inbound() <-chan jsonrpc.Frame {
	return p.in
}

func (p *pipeEnd) Closed() <-chan error {
	return p.closed
}

func (p *pipeEnd) Close() error {
	p.link.sever()
	return nil
}
