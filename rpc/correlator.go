package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/transport"
	"github.com/aeternity/aesc-go/types"
)

// Dispatcher receives inbound notification frames (no correlating id),
// routed by the correlator's Run loop. The channel FSM is the only
// implementation in this module.
type Dispatcher interface {
	Dispatch(f jsonrpc.Frame)
}

type waiter struct {
	result chan json.RawMessage
	err    chan error
}

// Correlator pairs outbound requests with ids and routes inbound responses
// to the waiter that submitted them, or inbound notifications to the
// Dispatcher. There is exactly one Correlator per channel session, and its
// Run loop is the only goroutine that reads the transport's Inbound
// channel.
type Correlator struct {
	t    transport.Transport
	d    Dispatcher
	log  *slog.Logger
	seed string

	mu      sync.Mutex
	nextSeq uint64
	pending map[string]waiter

	lastErrorFrame *jsonrpc.Frame
}

// New constructs a Correlator. Run must be started before Call/Notify are
// used, and before any frames can reach the Dispatcher.
func New(t transport.Transport, d Dispatcher, log *slog.Logger) *Correlator {
	if log == nil {
		log = slog.Default()
	}
	return &Correlator{
		t:       t,
		d:       d,
		log:     log.With("component", "correlator"),
		seed:    uuid.NewString(),
		pending: make(map[string]waiter),
	}
}

// Run drains the transport's inbound frames until the transport closes or
// ctx is cancelled, routing each frame to its waiter or the Dispatcher. It
// blocks and should be run in its own goroutine; it returns the error that
// ended the session, nil for a clean shutdown.
func (c *Correlator) Run(ctx context.Context) error {
	for {
		select {
		case f, ok := <-c.t.Inbound():
			if !ok {
				return c.teardown(ctx)
			}
			c.route(f)
		case <-ctx.Done():
			return c.teardown(ctx)
		}
	}
}

func (c *Correlator) route(f jsonrpc.Frame) {
	if f.IsResponse() {
		c.mu.Lock()
		w, ok := c.pending[f.ID]
		if ok {
			delete(c.pending, f.ID)
		}
		if f.Error != nil {
			c.lastErrorFrame = &f
		}
		c.mu.Unlock()
		if !ok {
			c.log.Warn("response with no matching waiter", "id", f.ID)
			return
		}
		if f.Error != nil {
			w.err <- &types.NodeError{Code: f.Error.Code, Message: f.Error.Message}
			return
		}
		w.result <- f.Result
		return
	}

	if f.Method != "" {
		c.d.Dispatch(f)
		return
	}

	c.log.Warn("discarding frame with neither id nor method")
}

// teardown rejects every outstanding waiter with a transport error carrying
// the last inbound error frame, if any.
func (c *Correlator) teardown(ctx context.Context) error {
	c.mu.Lock()
	pending := c.pending
	c.pending = make(map[string]waiter)
	last := c.lastErrorFrame
	c.mu.Unlock()

	cause := ctx.Err()
	if last != nil && last.Error != nil {
		cause = &types.NodeError{Code: last.Error.Code, Message: last.Error.Message}
	}
	err := &types.ChannelConnectionError{Cause: cause}

	var g errgroup.Group
	for _, w := range pending {
		w := w
		g.Go(func() error {
			w.err <- err
			return nil
		})
	}
	_ = g.Wait()
	return err
}

// Call sends an outbound request and blocks until a correlated response
// arrives, ctx is done, or the session tears down.
func (c *Correlator) Call(ctx context.Context, method string, params interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	c.nextSeq++
	id := fmt.Sprintf("%s-%d", c.seed, c.nextSeq)
	w := waiter{result: make(chan json.RawMessage, 1), err: make(chan error, 1)}
	c.pending[id] = w
	c.mu.Unlock()

	frame, err := jsonrpc.NewRequest(id, method, params)
	if err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}
	if err := c.t.Send(ctx, frame); err != nil {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, err
	}

	select {
	case res := <-w.result:
		return res, nil
	case err := <-w.err:
		return nil, err
	case <-ctx.Done():
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
		return nil, &types.TimeoutError{Method: method}
	}
}

// Notify sends a fire-and-forget outbound notification with no id and no
// expected response.
func (c *Correlator) Notify(ctx context.Context, method string, params interface{}) error {
	frame, err := jsonrpc.NewNotification(method, params)
	if err != nil {
		return err
	}
	return c.t.Send(ctx, frame)
}

// Close closes the underlying transport. Run, if still active, observes the
// resulting closed Inbound channel and tears down any outstanding waiters.
func (c *Correlator) Close() error {
	return c.t.Close()
}
