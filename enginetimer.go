package weir

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/persistence"
)

// pollTimers fires the due timers of one process until ctx is canceled.
//
// The poller owns the lifecycle of timer records. A timer event node only
// persists and removes its own record; it is the poller that detects a due
// record, triggers the owning node, and reschedules or removes the record
// once the node has acknowledged the firing.
func (e *Engine) pollTimers(ctx context.Context, ep *engineProcess) error {
	if err := e.seedStartTimers(ctx, ep); err != nil {
		return err
	}

	for {
		if err := linger.Sleep(ctx, e.opts.TimerPollInterval); err != nil {
			return err
		}

		if err := e.fireDueTimers(ctx, ep); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}

			logging.Log(
				e.opts.Logger,
				"unable to fire the due timers of process %s: %s",
				ep.Process.Key,
				err,
			)
		}
	}
}

// seedStartTimers schedules the first firing of each top-level timer start
// event.
//
// Schedules are re-derived at boot; the first firing of a relative or
// cyclic timer start is measured from engine start.
func (e *Engine) seedStartTimers(ctx context.Context, ep *engineProcess) error {
	var batch []persistence.Operation
	now := time.Now()

	for _, n := range ep.Process.Nodes {
		if n.Kind != definition.StartEvent || n.Parent != "" {
			continue
		}

		if n.EventKind() != definition.EventTimer {
			continue
		}

		batch = append(batch, persistence.SaveTimer{
			Timer: persistence.Timer{
				NodeID: n.ID,
				FireAt: n.Event.Timer.First(now),
			},
		})
	}

	if len(batch) == 0 {
		return nil
	}

	return ep.DataStore.Persist(ctx, batch)
}

// fireDueTimers triggers the owning node of every due timer and settles
// each record.
func (e *Engine) fireDueTimers(ctx context.Context, ep *engineProcess) error {
	timers, err := ep.DataStore.LoadDueTimers(ctx, time.Now())
	if err != nil {
		return err
	}

	for _, t := range timers {
		if err := e.fireTimer(ctx, ep, t); err != nil {
			return err
		}
	}

	return nil
}

func (e *Engine) fireTimer(
	ctx context.Context,
	ep *engineProcess,
	t persistence.Timer,
) error {
	instanceID := t.InstanceID

	if instanceID == "" {
		// A timer start event; each firing begins a new process instance.
		pi, err := ep.Lifecycle.CreateInstance(ctx, nil)
		if err != nil {
			return err
		}

		instanceID = pi.InstanceID
	}

	if err := e.trigger(ctx, ep, t.NodeID, instanceID, nil); err != nil {
		return err
	}

	t.Firings++

	op := persistence.Operation(persistence.RemoveTimer{Timer: t})

	// Only nodes that remain armed after a firing are rescheduled: start
	// events, which begin a new instance per firing, and boundary events,
	// which stay attached until their host completes. Any other node passes
	// on its first firing, making further firings dead letters.
	n := ep.Process.MustNode(t.NodeID)
	if t.InstanceID == "" || n.Kind == definition.BoundaryEvent {
		if next, ok := n.Event.Timer.Next(t.FireAt, t.Firings); ok {
			t.FireAt = next
			op = persistence.SaveTimer{Timer: t}
		}
	}

	return ep.DataStore.Persist(ctx, []persistence.Operation{op})
}
