package fixtures

import (
	"context"

	"github.com/millrace/weir/eventdef"
)

// DispatcherStub is a test implementation of the eventdef.Dispatcher
// interface.
type DispatcherStub struct {
	DispatchFunc     func(context.Context, string, []byte) error
	RequestReplyFunc func(context.Context, string, []byte) ([]byte, error)
}

// Dispatch sends an outbound integration message.
func (d *DispatcherStub) Dispatch(
	ctx context.Context,
	nodeID string,
	payload []byte,
) error {
	if d.DispatchFunc != nil {
		return d.DispatchFunc(ctx, nodeID, payload)
	}

	return nil
}

// RequestReply sends an outbound integration message and waits for the
// reply payload.
func (d *DispatcherStub) RequestReply(
	ctx context.Context,
	nodeID string,
	payload []byte,
) ([]byte, error) {
	if d.RequestReplyFunc != nil {
		return d.RequestReplyFunc(ctx, nodeID, payload)
	}

	return nil, nil
}

var _ eventdef.Dispatcher = (*DispatcherStub)(nil)
