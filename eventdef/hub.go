package eventdef

import (
	"context"
	"sync"

	"go.uber.org/multierr"
)

// SubscriberKey identifies one subscription to a named signal.
//
// The instance ID is empty for catching start nodes, which create a new
// process instance per raised signal rather than waiting on one.
type SubscriberKey struct {
	ProcessKey string
	NodeID     string
	InstanceID string
}

// Hub is the publish/subscribe mechanism behind signal and link events.
//
// Subscriptions are engine-local and in-memory. An instance waiting on a
// signal holds its durable waiting state in the store, but its subscription
// is not re-armed by a restart; only a fresh activation of the node
// subscribes it.
type Hub struct {
	m           sync.Mutex
	subscribers map[string]map[SubscriberKey]func(ctx context.Context, payload []byte) error
}

// Subscribe registers a handler invoked each time the named signal is raised.
//
// Subscribing again with the same key replaces the previous handler.
func (h *Hub) Subscribe(
	name string,
	k SubscriberKey,
	fn func(ctx context.Context, payload []byte) error,
) {
	h.m.Lock()
	defer h.m.Unlock()

	if h.subscribers == nil {
		h.subscribers = map[string]map[SubscriberKey]func(context.Context, []byte) error{}
	}

	if h.subscribers[name] == nil {
		h.subscribers[name] = map[SubscriberKey]func(context.Context, []byte) error{}
	}

	h.subscribers[name][k] = fn
}

// Unsubscribe removes a subscription. Removing an absent subscription is not
// an error.
func (h *Hub) Unsubscribe(name string, k SubscriberKey) {
	h.m.Lock()
	defer h.m.Unlock()

	delete(h.subscribers[name], k)
}

// Raise invokes every handler subscribed to the named signal.
//
// The handlers run sequentially; the aggregate of their errors is returned.
func (h *Hub) Raise(ctx context.Context, name string, payload []byte) error {
	h.m.Lock()

	handlers := make(
		[]func(context.Context, []byte) error,
		0,
		len(h.subscribers[name]),
	)
	for _, fn := range h.subscribers[name] {
		handlers = append(handlers, fn)
	}

	h.m.Unlock()

	var err error
	for _, fn := range handlers {
		err = multierr.Append(err, fn(ctx, payload))
	}

	return err
}
