package loop

import (
	"context"

	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
)

// Standard is the strategy of a standard loop: the inner action is re-invoked
// while `loopCount < max AND condition(data)` holds.
type Standard struct {
	// Spec is the modeled loop.
	Spec *definition.LoopSpec
}

// Begin enters the loop.
//
// A test-before loop that starts with a false condition ends without running
// the inner action at all.
func (l *Standard) Begin(ctx context.Context, s *node.Scope, a Action) error {
	s.Instance.LoopCount = 0
	s.Save()

	if l.Spec.TestBefore {
		ok, err := l.while(ctx, s)
		if err != nil {
			return err
		}

		if !ok {
			s.PostSelf(message.LoopEnd, nil)
			return nil
		}
	}

	return begin(ctx, s, a, s.Envelope.Payload)
}

// Iterate records one completed invocation and re-invokes the inner action
// while the loop condition holds.
func (l *Standard) Iterate(
	ctx context.Context,
	s *node.Scope,
	a Action,
	reply []byte,
) error {
	s.Instance.LoopCount++
	s.Save()

	ok, err := l.while(ctx, s)
	if err != nil {
		return err
	}

	if !ok {
		s.PostSelf(message.LoopEnd, reply)
		return nil
	}

	return begin(ctx, s, a, s.Envelope.Payload)
}

// while evaluates the loop's continuation condition.
func (l *Standard) while(ctx context.Context, s *node.Scope) (bool, error) {
	if l.Spec.Max > 0 && s.Instance.LoopCount >= l.Spec.Max {
		return false, nil
	}

	if l.Spec.Condition == nil {
		return true, nil
	}

	return l.Spec.Condition.Eval(ctx, s)
}
