package client

import (
	"context"
	"log/slog"

	"github.com/aeternity/aesc-go/event"
	"github.com/aeternity/aesc-go/fsm"
	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/rpc"
	"github.com/aeternity/aesc-go/sign"
	"github.com/aeternity/aesc-go/transport"
	"github.com/aeternity/aesc-go/types"
)

// Config parameterizes a Client: where to dial, how the channel should be
// opened or reestablished, who signs for the local participant, and where
// to log.
type Config struct {
	// URL is the node's channel WebSocket endpoint, e.g.
	// "ws://localhost:3014/channel".
	URL string

	Channel fsm.Config
	Signer  sign.Signer

	Log *slog.Logger
}

// Client is one open channel session: a dialed transport, its correlator,
// its sign broker, its event bus, and the FSM that drives all four.
type Client struct {
	corr *rpc.Correlator
	fsm  *fsm.FSM
	bus  *event.Bus
	log  *slog.Logger

	cancel context.CancelFunc
}

// Dial connects to the node, wires the session together, and starts the
// open handshake or reestablish. It returns once the session is wired and
// Initialize has been sent; callers should subscribe
// to StatusChanged via On before or immediately after Dial to observe the
// handshake's progress, since it completes asynchronously.
func Dial(ctx context.Context, cfg Config) (*Client, error) {
	log := cfg.Log
	if log == nil {
		log = slog.Default()
	}

	t, err := transport.Dial(ctx, cfg.URL, log)
	if err != nil {
		return nil, err
	}

	bus := event.New(log)
	broker := sign.New(cfg.Signer, log)

	runCtx, cancel := context.WithCancel(context.Background())

	c := &Client{bus: bus, log: log, cancel: cancel}
	disp := &deferredDispatcher{}
	c.corr = rpc.New(t, disp, log)
	c.fsm = fsm.New(cfg.Channel, c.corr, broker, bus, log)
	disp.fsm = c.fsm

	go c.fsm.Run(runCtx)
	go func() {
		if err := c.corr.Run(runCtx); err != nil {
			log.Warn("session ended", "error", err)
		}
	}()

	if err := c.fsm.Initialize(ctx); err != nil {
		cancel()
		return nil, err
	}
	return c, nil
}

// deferredDispatcher breaks the construction cycle between Correlator and
// FSM: rpc.New needs a Dispatcher before fsm.New can exist (fsm.New needs
// the Correlator), so the Correlator is given this empty shell first and
// the real FSM is attached to it immediately after.
type deferredDispatcher struct {
	fsm *fsm.FSM
}

func (d *deferredDispatcher) Dispatch(f jsonrpc.Frame) {
	if d.fsm != nil {
		d.fsm.Dispatch(f)
	}
}

// Close tears down the session: it cancels the correlator/FSM run loops and
// closes the transport, failing any in-flight action with a connection
// error.
func (c *Client) Close() {
	c.cancel()
	c.fsm.Close()
	_ = c.corr.Close()
}

// On subscribes to a channel lifecycle event.
func (c *Client) On(name event.Name, l event.Listener) (unsubscribe func()) {
	return c.bus.On(name, l)
}

// Status returns the channel's current caller-visible status.
func (c *Client) Status() types.Status {
	return c.fsm.Status()
}

// Round returns the channel's current off-chain round.
func (c *Client) Round() types.Round {
	return c.fsm.Round()
}
