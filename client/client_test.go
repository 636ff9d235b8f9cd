package client

import (
	"context"
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

type acceptAllSigner struct{}

func (acceptAllSigner) Sign(ctx context.Context, tx types.TxBlob, meta sign.Meta) (sign.Result, error) {
	return sign.Signed(tx), nil
}

func (acceptAllSigner) SignTagged(ctx context.Context, tag types.SignTag, tx types.TxBlob, meta sign.Meta) (sign.Result, error) {
	return sign.Signed(tx), nil
}

// newTestClient wires a Client to an in-memory pipe in place of Dial, which
// requires a real WebSocket endpoint.
func newTestClient(t *testing.T) (*Client, transport.Transport) {
	t.Helper()
	clientSide, nodeSide := transport.NewPipe()

	bus := event.New(nil)
	broker := sign.New(acceptAllSigner{}, nil)

	c := &Client{bus: bus}
	disp := &deferredDispatcher{}
	c.corr = rpc.New(clientSide, disp, nil)
	c.fsm = fsm.New(fsm.Config{
		Role:            fsm.RoleInitiator,
		InitiatorID:     "ak_initiator",
		ResponderID:     "ak_responder",
		InitiatorAmount: types.NewAmount(1000),
		ResponderAmount: types.NewAmount(1000),
	}, c.corr, broker, bus, nil)
	disp.fsm = c.fsm

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	t.Cleanup(func() { c.Close() })
	go c.fsm.Run(ctx)
	go c.corr.Run(ctx)
	return c, nodeSide
}

func TestUpdateRejectsNonPositiveAmount(t *testing.T) {
	c, _ := newTestClient(t)
	_, err := c.Update(context.Background(), "ak_a", "ak_b", types.NewAmount(0))
	require.Error(t, err)
	var argErr *types.IllegalArgumentError
	require.ErrorAs(t, err, &argErr)
}

func TestSendMessageReachesNode(t *testing.T) {
	c, node := newTestClient(t)
	require.NoError(t, c.SendMessage(context.Background(), "ak_b", []byte(`"hi"`)))

	select {
	case f := <-node.Inbound():
		require.Equal(t, jsonrpc.MethodMessage, f.Method)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for outbound message frame")
	}
}
