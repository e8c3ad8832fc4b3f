package weir

import (
	"context"

	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/eventdef"
	"github.com/millrace/weir/internal/x/loggingx"
	"github.com/millrace/weir/lifecycle"
	"github.com/millrace/weir/loop"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/node/activity"
	"github.com/millrace/weir/node/event"
	"github.com/millrace/weir/node/gateway"
	"github.com/millrace/weir/persistence"
)

// engineProcess is one hosted process definition and its collaborators.
type engineProcess struct {
	Process   *definition.Process
	DataStore persistence.DataStore
	Packer    *envelope.Packer
	Lifecycle *lifecycle.Coordinator
	Workers   []*node.Worker
}

// newProcess opens the process's data store and builds a worker for each of
// its flow nodes.
func (e *Engine) newProcess(
	ctx context.Context,
	p *definition.Process,
) (*engineProcess, error) {
	ds, err := e.dataStores.Get(ctx, p.Key)
	if err != nil {
		return nil, err
	}

	logger := loggingx.WithPrefix(e.opts.Logger, "[%s] ", p.Key)

	packer := &envelope.Packer{
		ProcessKey: p.Key,
	}

	ep := &engineProcess{
		Process:   p,
		DataStore: ds,
		Packer:    packer,
		Lifecycle: &lifecycle.Coordinator{
			Process:   p,
			DataStore: ds,
			Policy:    e.opts.ArchivePolicy,
		},
	}

	deactivation := &deactivate.Coordinator{
		Packer:   packer,
		Exchange: e.exchange,
		Timeout:  e.opts.DeactivationTimeout,
		Logger:   logger,
	}

	deps := eventdef.Deps{
		Dispatcher: e.opts.Dispatcher,
		Hub:        e.hub,
		Packer:     packer,
		Exchange:   e.exchange,
		Deactivation: &deactivate.Coordinator{
			Packer:   packer,
			Exchange: e.exchange,
			Timeout:  e.opts.TerminationTimeout,
			Logger:   logger,
		},
		Process: p,
	}

	for _, n := range p.Nodes {
		w := &node.Worker{
			Process:         p,
			Node:            n,
			Behavior:        e.newBehavior(ep, n, deactivation, deps),
			DataStore:       ds,
			Packer:          packer,
			Exchange:        e.exchange,
			Semaphore:       e.semaphore,
			BackoffStrategy: e.opts.MessageBackoff,
			Logger:          logger,
		}

		e.exchange.Register(w)
		ep.Workers = append(ep.Workers, w)
	}

	e.subscribeStartSignals(ep)

	return ep, nil
}

// newBehavior builds the type-specific behavior of one flow node.
func (e *Engine) newBehavior(
	ep *engineProcess,
	n *definition.FlowNode,
	deactivation *deactivate.Coordinator,
	deps eventdef.Deps,
) node.Behavior {
	p := ep.Process

	switch n.Kind {
	case definition.StartEvent:
		return &event.Start{
			Strategy: eventdef.New(n, deps),
			Timeout:  e.opts.MessageTimeout,
		}

	case definition.EndEvent:
		return &event.End{
			Strategy:  eventdef.New(n, deps),
			Lifecycle: ep.Lifecycle,
			Timeout:   e.opts.MessageTimeout,
		}

	case definition.IntermediateCatchEvent, definition.BoundaryEvent:
		return &event.Catch{
			Strategy:     eventdef.New(n, deps),
			GatewayID:    feedingGateway(p, n),
			HostID:       n.AttachedTo,
			Deactivation: deactivation,
			Timeout:      e.opts.MessageTimeout,
		}

	case definition.IntermediateThrowEvent:
		return &event.Throw{
			Strategy: eventdef.New(n, deps),
			Timeout:  e.opts.MessageTimeout,
		}

	case definition.ExclusiveGateway:
		return gateway.Exclusive{}

	case definition.ParallelGateway:
		return gateway.Parallel{}

	case definition.ComplexGateway:
		return &gateway.Complex{
			Lifecycle:    ep.Lifecycle,
			Deactivation: deactivation,
		}

	case definition.EventBasedGateway:
		return &gateway.EventBased{
			Deactivation: deactivation,
		}

	default:
		return &activity.Activity{
			Loop:         loop.New(n),
			Action:       e.newAction(ep, n, deactivation),
			Deactivation: deactivation,
		}
	}
}

// newAction builds the unit of work of one activity node.
func (e *Engine) newAction(
	ep *engineProcess,
	n *definition.FlowNode,
	deactivation *deactivate.Coordinator,
) loop.Action {
	switch n.Kind {
	case definition.SendTask:
		return &activity.SendTask{
			Dispatcher: e.opts.Dispatcher,
		}

	case definition.ServiceTask:
		return &activity.ServiceTask{
			Dispatcher: e.opts.Dispatcher,
		}

	case definition.SubProcess:
		return &activity.SubProcess{
			Process:      ep.Process,
			Deactivation: deactivation,
		}

	default:
		return activity.ReceiveTask{}
	}
}

// subscribeStartSignals arms the signal start events of a process for the
// lifetime of the engine. A raised signal with a matching name creates a
// new instance and triggers the start event within it.
func (e *Engine) subscribeStartSignals(ep *engineProcess) {
	for _, n := range ep.Process.Nodes {
		if n.Kind != definition.StartEvent || n.Parent != "" {
			continue
		}

		var name string
		switch n.EventKind() {
		case definition.EventSignal:
			name = n.Event.Name
		case definition.EventLink:
			name = "link:" + ep.Process.Key + ":" + n.Event.Name
		default:
			continue
		}

		nodeID := n.ID

		e.hub.Subscribe(
			name,
			eventdef.SubscriberKey{
				ProcessKey: ep.Process.Key,
				NodeID:     nodeID,
			},
			func(ctx context.Context, payload []byte) error {
				pi, err := ep.Lifecycle.CreateInstance(ctx, nil)
				if err != nil {
					return err
				}

				env := ep.Packer.Pack(
					message.Trigger,
					nodeID,
					pi.InstanceID,
					payload,
				)

				return e.exchange.Post(env)
			},
		)
	}
}

// feedingGateway returns the ID of the event-based gateway that feeds the
// given catch node, or empty if it is not gateway-fed.
func feedingGateway(p *definition.Process, n *definition.FlowNode) string {
	for _, id := range n.Incoming {
		if p.MustNode(id).Kind == definition.EventBasedGateway {
			return id
		}
	}

	return ""
}
