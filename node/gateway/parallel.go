package gateway

import (
	"context"

	"github.com/millrace/weir/node"
)

// Parallel is the behavior of a parallel gateway node. It waits for every
// incoming flow to fire, then activates every outgoing flow exactly once.
type Parallel struct{}

// Activate records the firing of one incoming flow, and fires the gateway
// when the last required flow arrives.
func (Parallel) Activate(ctx context.Context, s *node.Scope) error {
	done, err := s.Join()
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	if err := s.Pass(); err != nil {
		return err
	}

	s.ActivateOutgoing()

	return nil
}

// Trigger logs an unexpected trigger.
func (Parallel) Trigger(ctx context.Context, s *node.Scope) error {
	s.Log("ignoring trigger of a parallel gateway")
	return nil
}
