package event

import (
	"context"
	"time"

	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/node"
)

// Catch is the behavior of an intermediate catch event or a boundary
// event.
//
// After activation the node stays active until its modeled event occurs.
// When the node is one of the alternatives offered by an event-based
// gateway, the occurrence is reported to the gateway instead, and the node
// completes only if the gateway elects it as the winner.
type Catch struct {
	// Strategy handles the node's modeled event definition.
	Strategy eventdef.Strategy

	// GatewayID is the ID of the event-based gateway that feeds this node,
	// or empty if the node is not gateway-fed.
	GatewayID string

	// HostID is the ID of the activity this node is attached to, or empty
	// if the node is not a boundary event. A triggered boundary event
	// interrupts its host.
	HostID string

	// Deactivation interrupts the host activity of a boundary event.
	Deactivation *deactivate.Coordinator

	// Timeout is the maximum time to wait for the strategy's commit
	// acknowledgment. If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// Activate arms the node's event definition and leaves the node active,
// waiting for the event to occur.
func (b *Catch) Activate(ctx context.Context, s *node.Scope) error {
	done, err := s.Join()
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	c, err := b.Strategy.Activate(ctx, s)
	if err != nil {
		return err
	}

	return await(ctx, c, b.Timeout)
}

// Trigger handles the occurrence of the modeled event.
func (b *Catch) Trigger(ctx context.Context, s *node.Scope) error {
	c, err := b.Strategy.Trigger(ctx, s)
	if err != nil {
		return err
	}

	if err := await(ctx, c, b.Timeout); err != nil {
		return err
	}

	if b.GatewayID != "" {
		// Report the occurrence to the gateway and await its election.
		s.SendTrigger(b.GatewayID, s.Envelope.Payload)
		return nil
	}

	return b.complete(ctx, s)
}

// Winning handles the gateway's election of this node as the winner of an
// event-based race.
func (b *Catch) Winning(ctx context.Context, s *node.Scope) error {
	return b.complete(ctx, s)
}

// Deactivate disarms the node's event definition.
func (b *Catch) Deactivate(ctx context.Context, s *node.Scope) error {
	c, err := b.Strategy.Deactivate(ctx, s)
	if err != nil {
		return err
	}

	return await(ctx, c, b.Timeout)
}

func (b *Catch) complete(ctx context.Context, s *node.Scope) error {
	if b.HostID != "" {
		b.Deactivation.DeactivateDeferred(s, b.HostID)
	}

	if err := s.Pass(); err != nil {
		return err
	}

	s.ActivateOutgoing()

	return nil
}
