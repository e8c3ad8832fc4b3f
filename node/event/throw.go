package event

import (
	"context"
	"time"

	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/node"
)

// Throw is the behavior of an intermediate throw event node. The modeled
// event is emitted as part of activation and the token passes through
// immediately.
type Throw struct {
	// Strategy handles the node's modeled event definition.
	Strategy eventdef.Strategy

	// Timeout is the maximum time to wait for the strategy's commit
	// acknowledgment. If zero, DefaultTimeout is used.
	Timeout time.Duration
}

// Activate emits the modeled event and passes the token through.
func (b *Throw) Activate(ctx context.Context, s *node.Scope) error {
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

	if err := await(ctx, c, b.Timeout); err != nil {
		return err
	}

	if err := s.Pass(); err != nil {
		return err
	}

	s.ActivateOutgoing()

	return nil
}

// Trigger logs an unexpected trigger. Throw events do not wait for
// external stimuli.
func (b *Throw) Trigger(ctx context.Context, s *node.Scope) error {
	s.Log("ignoring trigger of a throw event")
	return nil
}
