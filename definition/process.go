// Package definition describes process definition graphs: flow nodes,
// sequence flows, and the event and loop semantics modeled on them.
//
// Definitions are built once, validated at registration, and read-only
// thereafter.
package definition

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Guard is one entry in an exclusive gateway's ordered routing table.
type Guard struct {
	// To is the outgoing node activated when the guard matches.
	To string `validate:"required"`

	// When is the guard expression.
	When Expression `validate:"required"`
}

// FlowNode is one node in a process definition graph.
type FlowNode struct {
	// ID uniquely identifies the node within its process definition.
	ID string `validate:"required"`

	// Kind is the node's type tag.
	Kind Kind

	// Incoming and Outgoing are the ordered IDs of the nodes connected by
	// sequence flows.
	Incoming []string
	Outgoing []string

	// JoinThreshold is the number of incoming flows that must fire before the
	// node proceeds. If it is zero, all incoming flows are required.
	JoinThreshold int `validate:"min=0"`

	// Parent is the ID of the enclosing sub-process node, or empty for nodes
	// at the top nesting level.
	Parent string

	// AttachedTo is the ID of the host activity of a boundary event.
	AttachedTo string

	// Attachments are the IDs of the boundary events attached to this
	// activity.
	Attachments []string

	// Guards is the ordered routing table of an exclusive gateway.
	Guards []Guard

	// DefaultTo is the outgoing node an exclusive gateway activates when no
	// guard matches.
	DefaultTo string

	// Event describes the node's event semantics, if any.
	Event *EventSpec

	// Loop describes the node's loop semantics, if any.
	Loop *LoopSpec
}

// RequiredFlows returns the number of incoming flows that must fire before
// the node proceeds.
func (n *FlowNode) RequiredFlows() int {
	if n.JoinThreshold > 0 {
		return n.JoinThreshold
	}

	if len(n.Incoming) > 0 {
		return len(n.Incoming)
	}

	return 1
}

// EventKind returns the node's modeled event kind, or EventNone if no event
// semantics are modeled.
func (n *FlowNode) EventKind() EventKind {
	if n.Event == nil {
		return EventNone
	}

	return n.Event.Kind
}

// LoopKind returns the node's modeled loop kind, or LoopNone if no loop
// semantics are modeled.
func (n *FlowNode) LoopKind() LoopKind {
	if n.Loop == nil {
		return LoopNone
	}

	return n.Loop.Kind
}

// Process is an immutable process definition graph.
type Process struct {
	// Key is the identity key of the process definition.
	Key string `validate:"required"`

	// Nodes are the process's flow nodes, including those nested inside
	// sub-processes.
	Nodes []*FlowNode `validate:"required,min=1"`

	index map[string]*FlowNode
}

var validate = validator.New()

// NewProcess returns a validated process definition containing the given flow
// nodes.
func NewProcess(key string, nodes ...*FlowNode) (*Process, error) {
	p := &Process{
		Key:   key,
		Nodes: nodes,
		index: make(map[string]*FlowNode, len(nodes)),
	}

	if err := validate.Struct(p); err != nil {
		return nil, fmt.Errorf("process %s is invalid: %w", key, err)
	}

	for _, n := range nodes {
		if err := validate.Struct(n); err != nil {
			return nil, fmt.Errorf("process %s is invalid: %w", key, err)
		}

		if _, ok := p.index[n.ID]; ok {
			return nil, fmt.Errorf(
				"process %s is invalid: node ID %s is used more than once",
				key,
				n.ID,
			)
		}

		p.index[n.ID] = n
	}

	if err := p.checkReferences(); err != nil {
		return nil, fmt.Errorf("process %s is invalid: %w", key, err)
	}

	return p, nil
}

// MustNewProcess returns a validated process definition, or panics if it is
// invalid.
func MustNewProcess(key string, nodes ...*FlowNode) *Process {
	p, err := NewProcess(key, nodes...)
	if err != nil {
		panic(err)
	}

	return p
}

// Node returns the definition of the flow node with the given ID.
func (p *Process) Node(id string) (*FlowNode, bool) {
	n, ok := p.index[id]
	return n, ok
}

// MustNode returns the definition of the flow node with the given ID, or
// panics if there is no such node.
func (p *Process) MustNode(id string) *FlowNode {
	n, ok := p.index[id]
	if !ok {
		panic(fmt.Sprintf("process %s has no node with ID %s", p.Key, id))
	}

	return n
}

// StartNodes returns the IDs of the start events at the top nesting level.
func (p *Process) StartNodes() []string {
	var ids []string

	for _, n := range p.Nodes {
		if n.Kind == StartEvent && n.Parent == "" {
			ids = append(ids, n.ID)
		}
	}

	return ids
}

// ChildrenOf returns the IDs of the nodes directly nested inside the given
// sub-process node, or the top-level nodes if parent is empty.
func (p *Process) ChildrenOf(parent string) []string {
	var ids []string

	for _, n := range p.Nodes {
		if n.Parent == parent {
			ids = append(ids, n.ID)
		}
	}

	return ids
}

// checkReferences verifies that every node reference resolves to a node in
// the graph.
func (p *Process) checkReferences() error {
	for _, n := range p.Nodes {
		for _, id := range n.Incoming {
			if _, ok := p.index[id]; !ok {
				return fmt.Errorf("node %s has an unknown incoming node %s", n.ID, id)
			}
		}

		for _, id := range n.Outgoing {
			if _, ok := p.index[id]; !ok {
				return fmt.Errorf("node %s has an unknown outgoing node %s", n.ID, id)
			}
		}

		for _, g := range n.Guards {
			if _, ok := p.index[g.To]; !ok {
				return fmt.Errorf("node %s routes to an unknown node %s", n.ID, g.To)
			}
		}

		if n.DefaultTo != "" {
			if _, ok := p.index[n.DefaultTo]; !ok {
				return fmt.Errorf("node %s has an unknown default node %s", n.ID, n.DefaultTo)
			}
		}

		if n.Parent != "" {
			parent, ok := p.index[n.Parent]
			if !ok {
				return fmt.Errorf("node %s has an unknown parent %s", n.ID, n.Parent)
			}

			if parent.Kind != SubProcess {
				return fmt.Errorf("node %s has a non-sub-process parent %s", n.ID, n.Parent)
			}
		}

		if n.AttachedTo != "" {
			host, ok := p.index[n.AttachedTo]
			if !ok {
				return fmt.Errorf("node %s is attached to an unknown node %s", n.ID, n.AttachedTo)
			}

			if !host.Kind.IsActivity() {
				return fmt.Errorf("node %s is attached to a non-activity %s", n.ID, n.AttachedTo)
			}
		}

		for _, id := range n.Attachments {
			b, ok := p.index[id]
			if !ok {
				return fmt.Errorf("node %s has an unknown attachment %s", n.ID, id)
			}

			if b.Kind != BoundaryEvent {
				return fmt.Errorf("node %s has a non-boundary attachment %s", n.ID, id)
			}
		}
	}

	return nil
}
