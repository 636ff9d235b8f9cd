package transport

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"nhooyr.io/websocket"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/types"
)

// WebSocket is the default Transport, a JSON-RPC-over-WebSocket connection
// to a node's channel endpoint.
type WebSocket struct {
	conn    *websocket.Conn
	inbound chan jsonrpc.Frame
	closed  chan error
	log     *slog.Logger

	closeOnce sync.Once
}

// Dial connects to a node's channel WebSocket endpoint and starts the
// inbound read loop. The context governs only the handshake; the
// connection's lifetime afterwards is independent of it.
func Dial(ctx context.Context, url string, log *slog.Logger) (*WebSocket, error) {
	if log == nil {
		log = slog.Default()
	}
	conn, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		return nil, &types.ChannelConnectionError{Cause: fmt.Errorf("dialing %s: %w", url, err)}
	}
	conn.SetReadLimit(10 << 20)

	w := &WebSocket{
		conn:    conn,
		inbound: make(chan jsonrpc.Frame, 32),
		closed:  make(chan error, 1),
		log:     log.With("component", "transport"),
	}
	go w.readLoop()
	return w, nil
}

func (w *WebSocket) readLoop() {
	defer close(w.inbound)
	ctx := context.Background()
	for {
		_, data, err := w.conn.Read(ctx)
		if err != nil {
			w.terminate(err)
			return
		}
		var f jsonrpc.Frame
		if err := json.Unmarshal(data, &f); err != nil {
			w.log.Warn("discarding malformed frame", "error", err)
			continue
		}
		w.inbound <- f
	}
}

func (w *WebSocket) terminate(cause error) {
	w.closeOnce.Do(func() {
		w.closed <- cause
		close(w.closed)
		_ = w.conn.Close(websocket.StatusAbnormalClosure, "connection lost")
	})
}

func (w *WebSocket) Send(ctx context.Context, f jsonrpc.Frame) error {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Errorf("encoding frame: %w", err)
	}
	if err := w.conn.Write(ctx, websocket.MessageText, data); err != nil {
		return &types.ChannelConnectionError{Cause: err}
	}
	return nil
}

func (w *WebSocket) Inbound() <-chan jsonrpc.Frame {
	return w.inbound
}

func (w *WebSocket) Closed() <-chan error {
	return w.closed
}

func (w *WebSocket) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.closed <- nil
		close(w.closed)
		err = w.conn.Close(websocket.StatusNormalClosure, "closed by client")
	})
	return err
}
