package event

import (
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/aeternity/aesc-go/jsonrpc"
	"github.com/aeternity/aesc-go/types"
)

// Name identifies an event kind.
type Name string

const (
	StatusChanged Name = "statusChanged"
	StateChanged  Name = "stateChanged"
	Message       Name = "message"
	Error         Name = "error"
)

// Listener receives an event payload. Its concrete type depends on Name:
// StatusChanged carries StatusChangedPayload, StateChanged carries
// StateChangedPayload, Message carries MessagePayload, Error carries
// ErrorPayload.
type Listener func(payload interface{})

// StatusChangedPayload is delivered on the StatusChanged event.
type StatusChangedPayload struct {
	Old types.Status
	New types.Status
}

// StateChangedPayload is delivered on the StateChanged event whenever the
// round/lastSignedTx snapshot advances.
type StateChangedPayload struct {
	Round types.Round
}

// MessagePayload is delivered on the Message event for inbound
// channels.message chat notifications.
type MessagePayload struct {
	From    types.Address
	Content []byte
}

// ErrorPayload is delivered on the Error event, carrying the offending
// inbound frame if the error originated from one.
type ErrorPayload struct {
	Err   error
	Frame *jsonrpc.Frame
}

// Bus is a multi-subscriber event notifier. It is safe for concurrent use.
type Bus struct {
	mu        sync.RWMutex
	listeners map[Name][]Listener
	log       *slog.Logger
}

// New constructs an empty Bus.
func New(log *slog.Logger) *Bus {
	if log == nil {
		log = slog.Default()
	}
	return &Bus{
		listeners: make(map[Name][]Listener),
		log:       log.With("component", "event-bus"),
	}
}

// On registers a listener for the named event. The returned func removes
// the listener; it is safe to call at most once.
func (b *Bus) On(name Name, l Listener) (unsubscribe func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.listeners[name] = append(b.listeners[name], l)
	idx := len(b.listeners[name]) - 1
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		ls := b.listeners[name]
		if idx < len(ls) {
			ls[idx] = nil
		}
	}
}

// Emit fans the payload out to every listener registered for name,
// concurrently, and waits for all of them before returning.
func (b *Bus) Emit(name Name, payload interface{}) {
	b.mu.RLock()
	ls := append([]Listener(nil), b.listeners[name]...)
	b.mu.RUnlock()

	var g errgroup.Group
	for _, l := range ls {
		if l == nil {
			continue
		}
		l := l
		g.Go(func() error {
			l(payload)
			return nil
		})
	}
	_ = g.Wait()
}
