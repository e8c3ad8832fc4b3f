package eventdef

import (
	"context"

	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/node"
)

// Terminate is the strategy of a terminate end event. Activation fans a
// Deactivation out to every other node of the process.
type Terminate struct {
	// Deactivation performs the fan-out. It is configured with the tighter
	// termination timeout so a terminating instance cannot indefinitely
	// block its own completion.
	Deactivation *deactivate.Coordinator

	// Process is the definition of the process being terminated.
	Process *definition.Process
}

// Activate cancels every other node of the process instance.
func (e Terminate) Activate(
	ctx context.Context,
	s *node.Scope,
) (*commit.Commit, error) {
	targets := make([]string, 0, len(e.Process.Nodes)-1)

	for _, n := range e.Process.Nodes {
		if n.ID != s.Node.ID {
			targets = append(targets, n.ID)
		}
	}

	e.Deactivation.DeactivateDeferred(s, targets...)

	return commit.Resolved(nil), nil
}

// Deactivate does nothing.
func (Terminate) Deactivate(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// Trigger does nothing.
func (Terminate) Trigger(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}
