// Package weir is an embeddable process execution engine. It runs process
// definitions modeled as flow node graphs, persisting instance state so
// that execution survives restarts.
package weir

import (
	"context"
	"fmt"

	"github.com/dogmatiq/linger"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence"
	"github.com/millrace/weir/semaphore"
	"golang.org/x/sync/errgroup"
)

// Engine hosts a set of process definitions.
type Engine struct {
	opts       *engineOptions
	dataStores *persistence.DataStoreSet
	hub        *eventdef.Hub
	exchange   *node.Exchange
	semaphore  semaphore.Semaphore

	ready     chan struct{}
	processes map[string]*engineProcess
}

// New returns a new engine that hosts the given process definition.
//
// p may be nil, in which case at least one WithProcess() option must be
// specified.
func New(p *definition.Process, options ...EngineOption) *Engine {
	if p != nil {
		options = append(options, WithProcess(p))
	}

	opts := resolveEngineOptions(options...)

	return &Engine{
		opts: opts,
		dataStores: &persistence.DataStoreSet{
			Provider: opts.PersistenceProvider,
		},
		hub:       &eventdef.Hub{},
		exchange:  &node.Exchange{},
		semaphore: semaphore.New(int(opts.ConcurrencyLimit)),
		ready:     make(chan struct{}),
		processes: map[string]*engineProcess{},
	}
}

// Run hosts the engine's processes until ctx is canceled or an error
// occurs.
func (e *Engine) Run(ctx context.Context) error {
	defer e.dataStores.Close()

	for _, p := range e.opts.Processes {
		ep, err := e.newProcess(ctx, p)
		if err != nil {
			return err
		}

		e.processes[p.Key] = ep
	}

	close(e.ready)

	parent := ctx
	g, ctx := errgroup.WithContext(ctx)

	for _, ep := range e.processes {
		for _, w := range ep.Workers {
			g.Go(func() error {
				return w.Run(ctx)
			})
		}

		g.Go(func() error {
			return e.pollTimers(ctx, ep)
		})
	}

	err := g.Wait()

	if parent.Err() != nil {
		return parent.Err()
	}

	return err
}

// CreateProcessInstance creates a new instance of the process definition
// with the given key and triggers its undecorated start events.
//
// Start events that wait for a timer or a signal are left armed; they fire
// through their own channels.
//
// It returns the ID of the new instance once the start events have
// acknowledged their triggers.
func (e *Engine) CreateProcessInstance(
	ctx context.Context,
	processKey string,
	metadata map[string]string,
) (string, error) {
	ep, err := e.process(ctx, processKey)
	if err != nil {
		return "", err
	}

	pi, err := ep.Lifecycle.CreateInstance(ctx, metadata)
	if err != nil {
		return "", err
	}

	for _, id := range ep.Process.StartNodes() {
		if ep.Process.MustNode(id).EventKind() != definition.EventNone {
			continue
		}

		if err := e.trigger(ctx, ep, id, pi.InstanceID, nil); err != nil {
			return "", err
		}
	}

	return pi.InstanceID, nil
}

// SendTrigger delivers an external stimulus to a flow node, such as the
// message awaited by a receive task or a message catch event.
//
// If instanceID is empty and the node is a start event, a new process
// instance is created and the start event is triggered within it.
//
// It returns once the node has acknowledged the trigger.
func (e *Engine) SendTrigger(
	ctx context.Context,
	processKey, nodeID, instanceID string,
	payload []byte,
) error {
	ep, err := e.process(ctx, processKey)
	if err != nil {
		return err
	}

	if instanceID == "" {
		n, ok := ep.Process.Node(nodeID)
		if !ok {
			return node.UnknownTargetError{
				ProcessKey: processKey,
				NodeID:     nodeID,
			}
		}

		if n.Kind != definition.StartEvent {
			return fmt.Errorf(
				"can not trigger node %s without an instance ID, it is not a start event",
				nodeID,
			)
		}

		pi, err := ep.Lifecycle.CreateInstance(ctx, nil)
		if err != nil {
			return err
		}

		instanceID = pi.InstanceID
	}

	return e.trigger(ctx, ep, nodeID, instanceID, payload)
}

// RaiseSignal broadcasts a named signal to every armed signal catch event,
// across all hosted processes, and starts a new instance of every process
// that begins with a matching signal start event.
func (e *Engine) RaiseSignal(
	ctx context.Context,
	name string,
	payload []byte,
) error {
	select {
	case <-e.ready:
	case <-ctx.Done():
		return ctx.Err()
	}

	return e.hub.Raise(ctx, name, payload)
}

// trigger posts a Trigger to the given node and waits for its
// acknowledgment.
func (e *Engine) trigger(
	ctx context.Context,
	ep *engineProcess,
	nodeID, instanceID string,
	payload []byte,
) error {
	env, c := ep.Packer.PackWithAck(
		message.Trigger,
		nodeID,
		instanceID,
		payload,
	)

	if err := e.exchange.Post(env); err != nil {
		return err
	}

	ctx, cancel := linger.ContextWithTimeout(
		ctx,
		e.opts.MessageTimeout,
		DefaultMessageTimeout,
	)
	defer cancel()

	return c.Wait(ctx)
}

// process returns the hosted process with the given key, waiting until the
// engine has booted if necessary.
func (e *Engine) process(
	ctx context.Context,
	k string,
) (*engineProcess, error) {
	select {
	case <-e.ready:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	ep, ok := e.processes[k]
	if !ok {
		return nil, fmt.Errorf("no process definition with the key %s is hosted on this engine", k)
	}

	return ep, nil
}

// discardDispatcher is the dispatcher used when no WithDispatcher() option
// is given. It silently discards outbound messages.
type discardDispatcher struct{}

func (discardDispatcher) Dispatch(context.Context, string, []byte) error {
	return nil
}

func (discardDispatcher) RequestReply(context.Context, string, []byte) ([]byte, error) {
	return nil, nil
}
