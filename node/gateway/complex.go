package gateway

import (
	"context"

	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/lifecycle"
	"github.com/millrace/weir/node"
)

// Complex is the behavior of a complex gateway node. It fires as soon as
// its join threshold is met, deactivates the incoming branches that lost
// the race, and activates every outgoing flow.
type Complex struct {
	// Lifecycle walks the instance's flow graph to find losing branches.
	Lifecycle *lifecycle.Coordinator

	// Deactivation fans deactivations out to the losing branches.
	Deactivation *deactivate.Coordinator
}

// Activate records the firing of one incoming flow, and fires the gateway
// when the join threshold is met.
func (b *Complex) Activate(ctx context.Context, s *node.Scope) error {
	done, err := s.Join()
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	losers, err := b.Lifecycle.LosingBranches(ctx, s.InstanceID(), s.Node.ID)
	if err != nil {
		return err
	}

	if err := s.Pass(); err != nil {
		return err
	}

	s.ActivateOutgoing()

	b.Deactivation.DeactivateDeferred(s, losers...)

	return nil
}

// Trigger logs an unexpected trigger.
func (b *Complex) Trigger(ctx context.Context, s *node.Scope) error {
	s.Log("ignoring trigger of a complex gateway")
	return nil
}
