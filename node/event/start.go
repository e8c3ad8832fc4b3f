package event

import (
	"context"
	"time"

	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence"
)

// Start is the behavior of a start event node.
//
// A start event is never activated by a sequence flow. It is triggered
// directly, either by the engine's public API, a due timer, or a raised
// signal, and begins the token flow of its process instance.
type Start struct {
	// Strategy handles the node's modeled event definition.
	Strategy eventdef.Strategy

	// Timeout is the maximum time to wait for the strategy's commit
	// acknowledgment. If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// Activate logs an unexpected activation. Start events have no incoming
// sequence flows.
func (b *Start) Activate(ctx context.Context, s *node.Scope) error {
	s.Log("ignoring activation of a start event")
	return nil
}

// Trigger begins the token flow at this node.
func (b *Start) Trigger(ctx context.Context, s *node.Scope) error {
	if s.Instance.State == persistence.Inactive {
		if err := s.Instance.Transition(persistence.Active); err != nil {
			return err
		}

		s.Instance.StartedAt = s.Now()
		s.Save()
	}

	c, err := b.Strategy.Trigger(ctx, s)
	if err != nil {
		return err
	}

	if err := await(ctx, c, b.Timeout); err != nil {
		return err
	}

	if err := s.Pass(); err != nil {
		return err
	}

	s.ActivateOutgoing()

	return nil
}
