package activity

import (
	"context"

	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/node"
)

// SendTask is an action that dispatches an outbound integration message
// and completes immediately.
type SendTask struct {
	// Dispatcher delivers the outbound message.
	Dispatcher eventdef.Dispatcher
}

// Begin dispatches the task's message. The iteration completes as soon as
// the dispatch is accepted.
func (a *SendTask) Begin(
	ctx context.Context,
	s *node.Scope,
	payload []byte,
) (bool, []byte, error) {
	if err := a.Dispatcher.Dispatch(ctx, s.Node.ID, payload); err != nil {
		return false, nil, err
	}

	return true, nil, nil
}

// ServiceTask is an action that dispatches an outbound integration message
// and completes with the reply payload.
type ServiceTask struct {
	// Dispatcher delivers the outbound message and obtains the reply.
	Dispatcher eventdef.Dispatcher
}

// Begin dispatches the task's message and waits for the reply.
func (a *ServiceTask) Begin(
	ctx context.Context,
	s *node.Scope,
	payload []byte,
) (bool, []byte, error) {
	reply, err := a.Dispatcher.RequestReply(ctx, s.Node.ID, payload)
	if err != nil {
		return false, nil, err
	}

	return true, reply, nil
}

// ReceiveTask is an action that completes only when an inbound message
// addressed to the node arrives.
type ReceiveTask struct{}

// Begin leaves the iteration pending. The iteration completes when the
// node is triggered by an inbound message.
func (ReceiveTask) Begin(
	ctx context.Context,
	s *node.Scope,
	payload []byte,
) (bool, []byte, error) {
	return false, nil, nil
}
