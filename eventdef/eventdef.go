// Package eventdef implements the pluggable event semantics a flow node may
// carry: message throw/catch, timer, signal, link, terminate, or none.
//
// A node carrying event semantics delegates its activation, deactivation and
// triggering to a strategy chosen once at build time from the modeled event
// kind. Every strategy method returns a commit acknowledgment so the owning
// node replies only once the side effect has been initiated.
package eventdef

import (
	"context"

	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/node"
)

// Strategy is the behavior of one modeled event kind.
type Strategy interface {
	// Activate performs the event's side effect when the owning node is
	// activated.
	Activate(ctx context.Context, s *node.Scope) (*commit.Commit, error)

	// Deactivate cleans up when the owning node is abandoned.
	Deactivate(ctx context.Context, s *node.Scope) (*commit.Commit, error)

	// Trigger performs the event's side effect when the owning node receives
	// an external stimulus.
	Trigger(ctx context.Context, s *node.Scope) (*commit.Commit, error)
}

// Dispatcher is the outbound adapter to external messaging systems.
type Dispatcher interface {
	// Dispatch sends an outbound integration message. It is fire-and-forget.
	Dispatch(ctx context.Context, nodeID string, payload []byte) error

	// RequestReply sends an outbound integration message and waits for the
	// reply payload.
	RequestReply(ctx context.Context, nodeID string, payload []byte) ([]byte, error)
}

// Deps are the collaborators available to strategies.
type Deps struct {
	// Dispatcher is the outbound integration adapter.
	Dispatcher Dispatcher

	// Hub carries raised signals and links to their subscribers.
	Hub *Hub

	// Packer packs the messages produced outside a node's unit-of-work, such
	// as signal deliveries.
	Packer *envelope.Packer

	// Exchange delivers those messages.
	Exchange *node.Exchange

	// Deactivation cancels other nodes on behalf of a Terminate event. It is
	// configured with the tighter termination timeout.
	Deactivation *deactivate.Coordinator

	// Process is the definition of the process the node belongs to.
	Process *definition.Process
}

// New returns the strategy for the given node's modeled event kind.
func New(n *definition.FlowNode, d Deps) Strategy {
	switch n.EventKind() {
	case definition.EventMessage:
		if n.Kind.IsCatching() {
			return MessageCatch{}
		}

		return MessageThrow{
			Dispatcher:   d.Dispatcher,
			DataObjectID: n.Event.DataObjectID,
		}

	case definition.EventTimer:
		return Timer{
			Spec: n.Event.Timer,
		}

	case definition.EventSignal:
		return newSignal(n, d, n.Event.Name)

	case definition.EventLink:
		// A link is a signal scoped to one process definition.
		return newSignal(n, d, "link:"+d.Process.Key+":"+n.Event.Name)

	case definition.EventTerminate:
		return Terminate{
			Deactivation: d.Deactivation,
			Process:      d.Process,
		}

	default:
		return Empty{}
	}
}
