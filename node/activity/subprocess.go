package activity

import (
	"context"

	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/node"
)

// SubProcess is an action that runs the flow nodes nested inside its node.
// It completes when a nested end event reports that the nested level has
// drained.
type SubProcess struct {
	// Process is the process definition.
	Process *definition.Process

	// Deactivation abandons the nested nodes when the sub-process is
	// interrupted mid-run.
	Deactivation *deactivate.Coordinator
}

// Begin triggers the nested start events and leaves the iteration pending.
// The iteration completes when a nested end event reports back.
func (a *SubProcess) Begin(
	ctx context.Context,
	s *node.Scope,
	payload []byte,
) (bool, []byte, error) {
	for _, id := range a.Process.ChildrenOf(s.Node.ID) {
		if a.Process.MustNode(id).Kind == definition.StartEvent {
			s.SendTrigger(id, payload)
		}
	}

	return false, nil, nil
}

// Cancel abandons every nested node.
func (a *SubProcess) Cancel(ctx context.Context, s *node.Scope) error {
	a.Deactivation.DeactivateDeferred(
		s,
		a.Process.ChildrenOf(s.Node.ID)...,
	)

	return nil
}
