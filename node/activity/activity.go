// Package activity implements the behaviors of activity nodes: send,
// receive, and service tasks, and embedded sub-processes.
package activity

import (
	"context"

	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/loop"
	"github.com/millrace/weir/node"
)

// A Canceler is an Action that needs to abandon in-flight work when its
// activity is deactivated mid-run.
type Canceler interface {
	// Cancel abandons the action's in-flight work.
	Cancel(ctx context.Context, s *node.Scope) error
}

// Activity is the behavior shared by every activity node. It drives the
// node's action through its loop strategy and manages the node's boundary
// events.
type Activity struct {
	// Loop is the node's loop strategy.
	Loop loop.Strategy

	// Action is the unit of work the node performs.
	Action loop.Action

	// Deactivation disarms boundary events and abandons in-flight work.
	Deactivation *deactivate.Coordinator
}

// Activate arms the node's boundary events and begins the loop.
func (b *Activity) Activate(ctx context.Context, s *node.Scope) error {
	done, err := s.Join()
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	for _, id := range s.Node.Attachments {
		s.SendActivation(id)
	}

	return b.Loop.Begin(ctx, s, b.Action)
}

// Trigger handles an asynchronous completion of the action, carrying the
// reply payload.
func (b *Activity) Trigger(ctx context.Context, s *node.Scope) error {
	return b.Loop.Iterate(ctx, s, b.Action, s.Envelope.Payload)
}

// LoopContinue handles a synchronous completion of the action.
func (b *Activity) LoopContinue(ctx context.Context, s *node.Scope) error {
	return b.Loop.Iterate(ctx, s, b.Action, s.Envelope.Payload)
}

// LoopEnd completes the node once the loop strategy has declared the loop
// finished.
func (b *Activity) LoopEnd(ctx context.Context, s *node.Scope) error {
	b.Deactivation.DeactivateDeferred(s, s.Node.Attachments...)

	if err := s.Pass(); err != nil {
		return err
	}

	s.ActivateOutgoing()

	return nil
}

// Deactivate abandons the node's in-flight work and disarms its boundary
// events.
func (b *Activity) Deactivate(ctx context.Context, s *node.Scope) error {
	if c, ok := b.Action.(Canceler); ok {
		if err := c.Cancel(ctx, s); err != nil {
			return err
		}
	}

	b.Deactivation.DeactivateDeferred(s, s.Node.Attachments...)

	return nil
}
