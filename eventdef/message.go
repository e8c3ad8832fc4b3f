package eventdef

import (
	"context"

	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence"
)

// MessageThrow is the strategy of a throwing message event. Activation
// dispatches an outbound integration message.
type MessageThrow struct {
	// Dispatcher is the outbound integration adapter.
	Dispatcher Dispatcher

	// DataObjectID, if non-empty, names the data object whose content is
	// used as the outbound payload. Otherwise the payload of the message
	// being handled is used.
	DataObjectID string
}

// Activate dispatches the outbound message.
func (e MessageThrow) Activate(
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

			// An unwritten data object throws an empty payload.
			content = nil
		}

		payload = content
	}

	if err := e.Dispatcher.Dispatch(ctx, s.Node.ID, payload); err != nil {
		return nil, err
	}

	return commit.Resolved(nil), nil
}

// Deactivate does nothing.
func (MessageThrow) Deactivate(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// Trigger does nothing; a throwing node has no external stimulus.
func (MessageThrow) Trigger(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// MessageCatch is the strategy of a catching message event.
//
// Inbound delivery is routed externally: the adapter that receives the
// message injects a Trigger for the waiting node, so the strategy itself has
// no side effects.
type MessageCatch struct{}

// Activate does nothing; the owning node holds its instance active until the
// inbound message arrives.
func (MessageCatch) Activate(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// Deactivate does nothing.
func (MessageCatch) Deactivate(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// Trigger does nothing; the inbound payload is already on the envelope.
func (MessageCatch) Trigger(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}
