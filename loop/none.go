package loop

import (
	"context"

	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
)

// None is the strategy of an activity with no modeled loop: messages pass
// straight through, and the loop ends after a single invocation.
type None struct{}

// Begin runs the single invocation.
func (None) Begin(ctx context.Context, s *node.Scope, a Action) error {
	s.Instance.LoopCount = 0
	s.Save()

	return begin(ctx, s, a, s.Envelope.Payload)
}

// Iterate ends the loop; the single invocation has completed.
func (None) Iterate(
	_ context.Context,
	s *node.Scope,
	_ Action,
	reply []byte,
) error {
	s.Instance.LoopCount = 1
	s.Save()

	s.PostSelf(message.LoopEnd, reply)

	return nil
}
