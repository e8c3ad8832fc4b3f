package eventdef

import (
	"context"

	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence"
)

// Timer is the strategy of a timer event.
//
// Activation computes the first fire time and persists it; an external
// poller raises a Trigger per due timer, and reschedules or removes the
// record itself once the trigger is acknowledged. Unbounded cycles
// reschedule on each firing.
type Timer struct {
	// Spec describes when the timer fires.
	Spec *definition.TimerSpec
}

// Activate persists the timer's first fire time.
func (e Timer) Activate(
	_ context.Context,
	s *node.Scope,
) (*commit.Commit, error) {
	s.Do(persistence.SaveTimer{
		Timer: persistence.Timer{
			NodeID:     s.Node.ID,
			InstanceID: s.Envelope.InstanceID,
			FireAt:     e.Spec.First(s.Now()),
		},
	})

	return commit.Resolved(nil), nil
}

// Deactivate removes the pending fire time, if any.
func (e Timer) Deactivate(
	_ context.Context,
	s *node.Scope,
) (*commit.Commit, error) {
	s.Do(persistence.RemoveTimer{
		Timer: persistence.Timer{
			NodeID:     s.Node.ID,
			InstanceID: s.Envelope.InstanceID,
		},
	})

	return commit.Resolved(nil), nil
}

// Trigger does nothing; the poller owns the timer record's lifecycle.
func (Timer) Trigger(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}
