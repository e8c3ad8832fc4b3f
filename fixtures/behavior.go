package fixtures

import (
	"context"

	"github.com/millrace/weir/node"
)

// BehaviorStub is a test implementation of the node.Behavior, Deactivator,
// WinningReceiver and LoopReceiver interfaces.
type BehaviorStub struct {
	ActivateFunc     func(context.Context, *node.Scope) error
	TriggerFunc      func(context.Context, *node.Scope) error
	DeactivateFunc   func(context.Context, *node.Scope) error
	WinningFunc      func(context.Context, *node.Scope) error
	LoopContinueFunc func(context.Context, *node.Scope) error
	LoopEndFunc      func(context.Context, *node.Scope) error
}

// Activate handles the firing of one of the node's incoming sequence flows.
func (b *BehaviorStub) Activate(ctx context.Context, s *node.Scope) error {
	if b.ActivateFunc != nil {
		return b.ActivateFunc(ctx, s)
	}
	return nil
}

// Trigger handles an external stimulus addressed to the node.
func (b *BehaviorStub) Trigger(ctx context.Context, s *node.Scope) error {
	if b.TriggerFunc != nil {
		return b.TriggerFunc(ctx, s)
	}
	return nil
}

// Deactivate contributes cleanup operations to a deactivation.
func (b *BehaviorStub) Deactivate(ctx context.Context, s *node.Scope) error {
	if b.DeactivateFunc != nil {
		return b.DeactivateFunc(ctx, s)
	}
	return nil
}

// Winning handles permission to proceed after winning an event-based race.
func (b *BehaviorStub) Winning(ctx context.Context, s *node.Scope) error {
	if b.WinningFunc != nil {
		return b.WinningFunc(ctx, s)
	}
	return nil
}

// LoopContinue handles the completion of one loop iteration.
func (b *BehaviorStub) LoopContinue(ctx context.Context, s *node.Scope) error {
	if b.LoopContinueFunc != nil {
		return b.LoopContinueFunc(ctx, s)
	}
	return nil
}

// LoopEnd handles the completion of the loop as a whole.
func (b *BehaviorStub) LoopEnd(ctx context.Context, s *node.Scope) error {
	if b.LoopEndFunc != nil {
		return b.LoopEndFunc(ctx, s)
	}
	return nil
}
