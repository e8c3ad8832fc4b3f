package event

import (
	"context"
	"time"

	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/lifecycle"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence"
)

// End is the behavior of an end event node.
//
// Every token arriving at an end event emits the node's modeled event. The
// node then checks whether any sibling node at its nesting level is still
// active; if none is, the level is complete. A top-level end finalizes the
// process instance, a nested end reports completion to its enclosing
// sub-process.
type End struct {
	// Strategy handles the node's modeled event definition.
	Strategy eventdef.Strategy

	// Lifecycle detects level completion and finalizes the instance.
	Lifecycle *lifecycle.Coordinator

	// Timeout is the maximum time to wait for the strategy's commit
	// acknowledgment. If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// Activate consumes an arriving token.
//
// The node does not join incoming flows; each arriving token is handled
// separately, so that completion is re-checked as the remaining branches
// drain.
func (b *End) Activate(ctx context.Context, s *node.Scope) error {
	if s.Instance.State == persistence.Inactive {
		if err := s.Instance.Transition(persistence.Active); err != nil {
			return err
		}

		s.Instance.StartedAt = s.Now()
		s.Save()
	}

	c, err := b.Strategy.Activate(ctx, s)
	if err != nil {
		return err
	}

	if err := await(ctx, c, b.Timeout); err != nil {
		return err
	}

	ended, err := b.Lifecycle.EndReached(ctx, s.InstanceID(), s.Node.ID)
	if err != nil {
		return err
	}
	if !ended {
		// Tokens are still flowing at this level. Stay active so that the
		// next arrival re-checks.
		s.Save()
		return nil
	}

	if err := s.Pass(); err != nil {
		return err
	}

	if s.Node.Parent != "" {
		// Completion of a nested level is reported to the enclosing
		// sub-process as an asynchronous task completion.
		s.SendTrigger(s.Node.Parent, nil)
		return nil
	}

	instanceID := s.InstanceID()
	s.Defer(func(ctx context.Context) error {
		return b.Lifecycle.Finalize(ctx, instanceID)
	})

	return nil
}

// Trigger logs an unexpected trigger. End events do not wait for external
// stimuli.
func (b *End) Trigger(ctx context.Context, s *node.Scope) error {
	s.Log("ignoring trigger of an end event")
	return nil
}
