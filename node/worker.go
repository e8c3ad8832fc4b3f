package node

import (
	"context"
	"errors"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/dogmatiq/linger/backoff"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/internal/mlog"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/persistence"
	"github.com/millrace/weir/semaphore"
)

// Worker drives a single flow node definition.
//
// It handles one message at a time to completion. Distinct workers run
// concurrently; there is no cross-worker lock or transaction. All
// per-instance state lives in the data store, apart from a cache of the most
// recently touched instance.
type Worker struct {
	// Process is the definition of the process the node belongs to.
	Process *definition.Process

	// Node is the definition of the flow node this worker drives.
	Node *definition.FlowNode

	// Behavior is the node's type-specific logic.
	Behavior Behavior

	// DataStore is the process's data store.
	DataStore persistence.DataStore

	// Packer is used to pack outbound messages.
	Packer *envelope.Packer

	// Exchange is used to deliver outbound messages.
	Exchange *Exchange

	// Semaphore limits the number of messages handled concurrently across
	// the engine.
	Semaphore semaphore.Semaphore

	// BackoffStrategy is the strategy used to delay retrying a message after
	// a failure. If it is nil, backoff.DefaultStrategy is used.
	BackoffStrategy backoff.Strategy

	// Logger is the target for log messages about the node.
	// If it is nil, logging.DefaultLogger is used.
	Logger logging.Logger

	// Now returns the current time. If it is nil, time.Now() is used.
	Now func() time.Time

	mailbox mailbox
	cache   *persistence.NodeInstance
}

// Post adds a message to the worker's mailbox. It never blocks.
func (w *Worker) Post(env *envelope.Envelope) {
	w.mailbox.Post(env)
}

// Run handles messages from the mailbox until ctx is canceled.
func (w *Worker) Run(ctx context.Context) error {
	for {
		env, err := w.mailbox.Pop(ctx)
		if err != nil {
			return err
		}

		if err := w.handleWithRetry(ctx, env); err != nil {
			return err
		}
	}
}

// handleWithRetry handles a single message, retrying on failure until it
// succeeds or ctx is canceled.
//
// A failure never propagates beyond this message; a transient store race or
// an optimistic concurrency conflict is resolved by reloading and retrying.
func (w *Worker) handleWithRetry(
	ctx context.Context,
	env *envelope.Envelope,
) error {
	strategy := w.BackoffStrategy
	if strategy == nil {
		strategy = backoff.DefaultStrategy
	}

	var fc uint

	for {
		err := w.handle(ctx, env, fc)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		if ite := new(persistence.IllegalTransitionError); errors.As(err, ite) {
			// An illegal transition is evidence of an already-resolved race,
			// not a failure; the message is dropped without effect.
			mlog.LogDrop(w.Logger, env, ite.From.String())
			env.ResolveAck(nil)

			return nil
		}

		// The cached instance may be the reason for an optimistic concurrency
		// conflict.
		w.cache = nil

		delay := strategy(err, fc)
		fc++

		mlog.LogFailure(w.Logger, env, err, delay)

		if err := linger.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// handle makes a single attempt at handling a message.
func (w *Worker) handle(
	ctx context.Context,
	env *envelope.Envelope,
	fc uint,
) error {
	s, err := w.advance(ctx, env, fc)
	if s == nil || err != nil {
		return err
	}

	for _, out := range s.outbound {
		mlog.LogProduce(w.Logger, out)

		if err := w.Exchange.Post(out); err != nil {
			logging.Log(w.Logger, err.Error())
		}
	}

	for _, fn := range s.deferred {
		if err := w.retryDeferred(ctx, fn); err != nil {
			return err
		}
	}

	env.ResolveAck(nil)

	return nil
}

// advance performs the persistent portion of handling a message while
// holding an engine-wide concurrency slot: load, dispatch, persist.
//
// The slot is released before outbound or deferred work runs. A deferred
// deactivation fan-out waits on acknowledgments that the target workers can
// only produce once slots are free.
//
// A nil scope with a nil error means the message was dropped.
func (w *Worker) advance(
	ctx context.Context,
	env *envelope.Envelope,
	fc uint,
) (*Scope, error) {
	if err := w.Semaphore.Acquire(ctx); err != nil {
		return nil, err
	}
	defer w.Semaphore.Release()

	mlog.LogConsume(w.Logger, env, fc)

	inst, err := w.load(ctx, env.InstanceID)
	if err != nil {
		return nil, err
	}

	if !inst.IsProcessable() {
		// The message lost a race that has already been resolved; late
		// messages for terminal instances are dropped without effect.
		mlog.LogDrop(w.Logger, env, inst.State.String())
		env.ResolveAck(nil)

		return nil, nil
	}

	s := &Scope{
		Process:   w.Process,
		Node:      w.Node,
		Envelope:  env,
		Instance:  &inst,
		DataStore: w.DataStore,
		Packer:    w.Packer,
		Logger:    w.Logger,
		Now:       w.now,
	}

	if err := w.dispatch(ctx, s); err != nil {
		return nil, err
	}

	if err := w.persist(ctx, s); err != nil {
		return nil, err
	}

	w.cache = s.Instance

	return s, nil
}

// retryDeferred runs a deferred function until it succeeds or ctx is
// canceled.
//
// The unit-of-work is already persisted; failing the whole message would
// re-apply it, so a deferred failure is confined to the function itself.
func (w *Worker) retryDeferred(
	ctx context.Context,
	fn func(context.Context) error,
) error {
	strategy := w.BackoffStrategy
	if strategy == nil {
		strategy = backoff.DefaultStrategy
	}

	var fc uint

	for {
		err := fn(ctx)
		if err == nil {
			return nil
		}

		if ctx.Err() != nil {
			return ctx.Err()
		}

		delay := strategy(err, fc)
		fc++

		logging.Log(w.Logger, "%s (next retry in %s)", err, delay)

		if err := linger.Sleep(ctx, delay); err != nil {
			return err
		}
	}
}

// dispatch hands the message to the behavior method matching its kind.
func (w *Worker) dispatch(ctx context.Context, s *Scope) error {
	switch s.Envelope.Kind {
	case message.Activation:
		return w.Behavior.Activate(ctx, s)

	case message.Trigger:
		return w.Behavior.Trigger(ctx, s)

	case message.Deactivation:
		return w.deactivate(ctx, s)

	case message.Winning:
		if b, ok := w.Behavior.(WinningReceiver); ok {
			return b.Winning(ctx, s)
		}

	case message.LoopContinue:
		if b, ok := w.Behavior.(LoopReceiver); ok {
			return b.LoopContinue(ctx, s)
		}

	case message.LoopEnd:
		if b, ok := w.Behavior.(LoopReceiver); ok {
			return b.LoopEnd(ctx, s)
		}
	}

	// A message kind the node has no use for is a modeling error, not a
	// failure; it is acknowledged without effect.
	logging.Log(
		w.Logger,
		"node %s of process %s ignored an unexpected %s message",
		w.Node.ID,
		w.Process.Key,
		s.Envelope.Kind,
	)

	return nil
}

// deactivate abandons the instance.
//
// The worker performs the transition; the behavior contributes cleanup
// operations if it implements Deactivator.
func (w *Worker) deactivate(ctx context.Context, s *Scope) error {
	if err := s.Instance.Transition(persistence.Deactivated); err != nil {
		return err
	}

	s.Instance.EndedAt = s.Now()
	s.Save()

	if b, ok := w.Behavior.(Deactivator); ok {
		return b.Deactivate(ctx, s)
	}

	return nil
}

// persist commits the unit-of-work accumulated in the scope.
func (w *Worker) persist(ctx context.Context, s *Scope) error {
	batch := s.batch

	if s.saved {
		batch = append(batch, persistence.SaveNodeInstance{
			Instance: *s.Instance,
		})
	}

	if len(batch) == 0 {
		return nil
	}

	if err := w.DataStore.Persist(ctx, batch); err != nil {
		return err
	}

	if s.saved {
		s.Instance.Revision++
	}

	return nil
}

// load fetches the instance record the message relates to, using the cached
// record if it matches.
func (w *Worker) load(
	ctx context.Context,
	instanceID string,
) (persistence.NodeInstance, error) {
	if w.cache != nil && w.cache.InstanceID == instanceID {
		return *w.cache, nil
	}

	inst, err := w.DataStore.LoadNodeInstance(ctx, w.Node.ID, instanceID)
	if err != nil {
		return persistence.NodeInstance{}, err
	}

	inst.ProcessKey = w.Process.Key

	return inst, nil
}

func (w *Worker) now() time.Time {
	if w.Now != nil {
		return w.Now()
	}

	return time.Now()
}
