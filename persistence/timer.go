package persistence

import (
	"context"
	"time"
)

// Timer is a persisted future firing of a timer event.
type Timer struct {
	// NodeID is the ID of the timer event node that owns the firing.
	NodeID string

	// InstanceID is the ID of the process instance the firing belongs to.
	InstanceID string

	// FireAt is the time at which the timer becomes due.
	FireAt time.Time

	// Firings is the number of times the timer has already fired, used by
	// cyclic timers to decide whether to reschedule.
	Firings int
}

// TimerRepository is an interface for reading persisted timers.
type TimerRepository interface {
	// LoadDueTimers returns every persisted timer that is due at or before
	// the given time.
	LoadDueTimers(ctx context.Context, now time.Time) ([]Timer, error)
}

// SaveTimer is an Operation that creates or replaces the timer for a
// (node, instance) pair.
type SaveTimer struct {
	// Timer is the timer to persist. At most one timer exists per
	// (node, instance) pair; the last write wins.
	Timer Timer
}

// AcceptVisitor calls v.VisitSaveTimer().
func (op SaveTimer) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitSaveTimer(ctx, op)
}

func (op SaveTimer) entityKey() entityKey {
	return entityKey{"timer", op.Timer.NodeID, op.Timer.InstanceID}
}

// RemoveTimer is an Operation that removes the timer for a (node, instance)
// pair.
//
// Removing a timer that does not exist is not an error.
type RemoveTimer struct {
	// Timer identifies the timer to remove. Its fire time is ignored.
	Timer Timer
}

// AcceptVisitor calls v.VisitRemoveTimer().
func (op RemoveTimer) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitRemoveTimer(ctx, op)
}

func (op RemoveTimer) entityKey() entityKey {
	return entityKey{"timer", op.Timer.NodeID, op.Timer.InstanceID}
}
