package memorypersistence

import (
	"context"
	"time"

	"github.com/millrace/weir/persistence"
)

// LoadDueTimers returns every persisted timer that is due at or before the
// given time.
func (ds *dataStore) LoadDueTimers(
	_ context.Context,
	now time.Time,
) ([]persistence.Timer, error) {
	ds.db.mutex.RLock()
	defer ds.db.mutex.RUnlock()

	var due []persistence.Timer

	for _, t := range ds.db.timers {
		if !t.FireAt.After(now) {
			due = append(due, t)
		}
	}

	return due, nil
}

// VisitSaveTimer always succeeds; timers are not versioned.
func (v *validator) VisitSaveTimer(
	_ context.Context,
	_ persistence.SaveTimer,
) error {
	return nil
}

// VisitRemoveTimer always succeeds; removing an absent timer is not an
// error.
func (v *validator) VisitRemoveTimer(
	_ context.Context,
	_ persistence.RemoveTimer,
) error {
	return nil
}

// VisitSaveTimer applies the changes in a "SaveTimer" operation to the
// database.
func (c *committer) VisitSaveTimer(
	_ context.Context,
	op persistence.SaveTimer,
) error {
	t := op.Timer
	key := timerKey{t.NodeID, t.InstanceID}

	c.db.timers[key] = t

	return nil
}

// VisitRemoveTimer applies the changes in a "RemoveTimer" operation to the
// database.
func (c *committer) VisitRemoveTimer(
	_ context.Context,
	op persistence.RemoveTimer,
) error {
	t := op.Timer
	key := timerKey{t.NodeID, t.InstanceID}

	delete(c.db.timers, key)

	return nil
}
