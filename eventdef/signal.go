package eventdef

import (
	"context"

	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence"
)

func newSignal(n *definition.FlowNode, d Deps, name string) Strategy {
	if !n.Kind.IsCatching() {
		return SignalThrow{
			Hub:          d.Hub,
			Name:         name,
			DataObjectID: n.Event.DataObjectID,
		}
	}

	return SignalCatch{
		Hub:        d.Hub,
		Name:       name,
		ProcessKey: d.Process.Key,
		NodeID:     n.ID,
		Packer:     d.Packer,
		Exchange:   d.Exchange,
	}
}

// SignalThrow is the strategy of a throwing signal or link event. Activation
// raises the named signal on the hub.
type SignalThrow struct {
	// Hub carries the signal to its subscribers.
	Hub *Hub

	// Name is the signal's name, already scoped for link events.
	Name string

	// DataObjectID, if non-empty, names the data object whose content is
	// used as the signal payload. Otherwise the payload of the message being
	// handled is used.
	DataObjectID string
}

// Activate raises the signal.
func (e SignalThrow) Activate(
	ctx context.Context,
	s *node.Scope,
) (*commit.Commit, error) {
	payload := s.Envelope.Payload

	if e.DataObjectID != "" {
		content, err := s.LoadDataObject(ctx, e.DataObjectID)
		if err != nil {
			if err != persistence.ErrDataObjectNotFound {
				return nil, err
			}

			content = nil
		}

		payload = content
	}

	if err := e.Hub.Raise(ctx, e.Name, payload); err != nil {
		return nil, err
	}

	return commit.Resolved(nil), nil
}

// Deactivate does nothing.
func (SignalThrow) Deactivate(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// Trigger does nothing; a throwing node has no external stimulus.
func (SignalThrow) Trigger(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// SignalCatch is the strategy of a catching signal or link event on a
// non-start node. Activation subscribes the waiting instance; each raise of
// the signal triggers every instance currently waiting on it.
type SignalCatch struct {
	// Hub carries the signal to its subscribers.
	Hub *Hub

	// Name is the signal's name, already scoped for link events.
	Name string

	// ProcessKey and NodeID identify the owning node.
	ProcessKey string
	NodeID     string

	// Packer packs the Trigger raised when the signal arrives.
	Packer *envelope.Packer

	// Exchange delivers the Trigger.
	Exchange *node.Exchange
}

// Activate subscribes the instance to the signal.
func (e SignalCatch) Activate(
	_ context.Context,
	s *node.Scope,
) (*commit.Commit, error) {
	instanceID := s.Envelope.InstanceID

	e.Hub.Subscribe(
		e.Name,
		e.key(instanceID),
		func(_ context.Context, payload []byte) error {
			return e.Exchange.Post(
				e.Packer.Pack(
					message.Trigger,
					e.NodeID,
					instanceID,
					payload,
				),
			)
		},
	)

	return commit.Resolved(nil), nil
}

// Deactivate removes the instance's subscription.
func (e SignalCatch) Deactivate(
	_ context.Context,
	s *node.Scope,
) (*commit.Commit, error) {
	e.Hub.Unsubscribe(e.Name, e.key(s.Envelope.InstanceID))

	return commit.Resolved(nil), nil
}

// Trigger removes the instance's subscription; the signal has been received.
func (e SignalCatch) Trigger(
	_ context.Context,
	s *node.Scope,
) (*commit.Commit, error) {
	e.Hub.Unsubscribe(e.Name, e.key(s.Envelope.InstanceID))

	return commit.Resolved(nil), nil
}

func (e SignalCatch) key(instanceID string) SubscriberKey {
	return SubscriberKey{
		ProcessKey: e.ProcessKey,
		NodeID:     e.NodeID,
		InstanceID: instanceID,
	}
}
