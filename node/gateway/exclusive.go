package gateway

import (
	"context"

	"github.com/millrace/weir/node"
)

// Exclusive is the behavior of an exclusive gateway node. It routes the
// token to the target of the first guard that evaluates to true, in the
// order the guards are defined, or to the default target if none does.
type Exclusive struct{}

// Activate evaluates the gateway's guards and routes the token.
func (Exclusive) Activate(ctx context.Context, s *node.Scope) error {
	done, err := s.Join()
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	target := s.Node.DefaultTo

	for _, g := range s.Node.Guards {
		ok, err := g.When.Eval(ctx, s)
		if err != nil {
			return err
		}

		if ok {
			target = g.To
			break
		}
	}

	if target == "" {
		// A modeling error: no guard matched and there is no default. The
		// token stalls here rather than being routed arbitrarily.
		s.Log("no guard matched and the gateway has no default route")
		return nil
	}

	if err := s.Pass(); err != nil {
		return err
	}

	s.SendActivation(target)

	return nil
}

// Trigger logs an unexpected trigger.
func (Exclusive) Trigger(ctx context.Context, s *node.Scope) error {
	s.Log("ignoring trigger of an exclusive gateway")
	return nil
}
