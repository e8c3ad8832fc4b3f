// Package loop implements the strategies that wrap a loop-capable activity:
// none, standard, and multi-instance.
//
// A strategy sits between the activity node and its inner action. Loop
// iterations complete via self-posted LoopContinue messages, so that every
// iteration respects the node's one-message-at-a-time discipline; once the
// loop as a whole is complete the strategy posts a single LoopEnd. The loop
// is invisible downstream.
package loop

import (
	"context"

	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
)

// Action is one invocation of the wrapped activity's work.
type Action interface {
	// Begin starts one invocation.
	//
	// It returns true, and the reply payload, if the invocation completed
	// synchronously. Otherwise completion is signalled later by an external
	// Trigger addressed to the owning node.
	Begin(ctx context.Context, s *node.Scope, payload []byte) (bool, []byte, error)
}

// ActionFunc is an adaptor that allows ordinary functions to be used as
// actions.
type ActionFunc func(ctx context.Context, s *node.Scope, payload []byte) (bool, []byte, error)

// Begin invokes fn.
func (fn ActionFunc) Begin(ctx context.Context, s *node.Scope, payload []byte) (bool, []byte, error) {
	return fn(ctx, s, payload)
}

// Strategy drives the iterations of one activity's loop.
type Strategy interface {
	// Begin enters the loop. The instance's loop counters are reset.
	Begin(ctx context.Context, s *node.Scope, a Action) error

	// Iterate handles the completion of one invocation of the inner action,
	// with its reply payload.
	Iterate(ctx context.Context, s *node.Scope, a Action, reply []byte) error
}

// New returns the strategy for the given node's modeled loop kind.
func New(n *definition.FlowNode) Strategy {
	switch n.LoopKind() {
	case definition.LoopStandard:
		return &Standard{
			Spec: n.Loop,
		}

	case definition.LoopMultiInstance:
		return &MultiInstance{
			Spec: n.Loop,
		}

	default:
		return None{}
	}
}

// begin starts one invocation of the inner action, and posts the completion
// message if the invocation completed synchronously.
func begin(
	ctx context.Context,
	s *node.Scope,
	a Action,
	payload []byte,
) error {
	completed, reply, err := a.Begin(ctx, s, payload)
	if err != nil {
		return err
	}

	if completed {
		s.PostSelf(message.LoopContinue, reply)
	}

	return nil
}
