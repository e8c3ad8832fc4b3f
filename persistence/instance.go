package persistence

import (
	"context"
	"fmt"
	"time"
)

// NodeInstance is the runtime record of one flow node's execution within one
// process instance.
type NodeInstance struct {
	// ProcessKey is the identity key of the process definition.
	ProcessKey string

	// NodeID is the ID of the flow node definition.
	NodeID string

	// InstanceID is the ID of the process instance.
	InstanceID string

	// Revision is the record's current version, used to enforce optimistic
	// concurrency control. A revision of zero means the record has never been
	// persisted.
	Revision uint64

	// State is the instance's lifecycle state.
	State State

	// FlowsFired is the number of incoming flows that have fired.
	FlowsFired int

	// FlowsNeeded is the number of incoming flows that must fire before the
	// node proceeds, captured when the instance first becomes active.
	FlowsNeeded int

	// LoopCount is the number of completed loop iterations. It is reset each
	// time the node's loop is entered.
	LoopCount int

	// AwaitedReplies is the number of outstanding inner invocations of a
	// parallel multi-instance loop.
	AwaitedReplies int

	// StartedAt and EndedAt are the instance's lifecycle timestamps.
	StartedAt time.Time
	EndedAt   time.Time
}

// Transition advances the instance to the given state.
//
// It returns an IllegalTransitionError if the transition is not permitted.
// The caller decides whether that is an error or evidence of an
// already-resolved race.
func (i *NodeInstance) Transition(next State) error {
	if !i.State.CanTransition(next) {
		return IllegalTransitionError{
			NodeID:     i.NodeID,
			InstanceID: i.InstanceID,
			From:       i.State,
			To:         next,
		}
	}

	i.State = next

	return nil
}

// IsProcessable returns true if messages for this instance should be acted
// upon.
//
// A message for an instance in a terminal state is evidence of an
// already-resolved race and must be dropped without effect.
func (i *NodeInstance) IsProcessable() bool {
	return !i.State.IsTerminal()
}

// IllegalTransitionError indicates an attempt to advance a node instance out
// of a terminal state, or along an edge absent from the transition table.
type IllegalTransitionError struct {
	NodeID     string
	InstanceID string
	From, To   State
}

func (e IllegalTransitionError) Error() string {
	return fmt.Sprintf(
		"instance %s of node %s cannot transition from %s to %s",
		e.InstanceID,
		e.NodeID,
		e.From,
		e.To,
	)
}

// NodeInstanceRepository is an interface for reading flow node instance
// records.
type NodeInstanceRepository interface {
	// LoadNodeInstance loads the instance record of a flow node.
	//
	// If the record does not exist, a freshly-inactive record at revision
	// zero is returned; first contact with an unknown instance is not an
	// error.
	LoadNodeInstance(
		ctx context.Context,
		nodeID, instanceID string,
	) (NodeInstance, error)

	// ListNodeInstances returns every node instance record belonging to the
	// given process instance.
	ListNodeInstances(
		ctx context.Context,
		instanceID string,
	) ([]NodeInstance, error)
}

// SaveNodeInstance is an Operation that creates or updates a flow node
// instance record.
type SaveNodeInstance struct {
	// Instance is the record to persist.
	//
	// Instance.Revision must be the revision of the record as currently
	// persisted, otherwise an optimistic concurrency conflict occurs and the
	// entire batch of operations is rejected.
	Instance NodeInstance
}

// AcceptVisitor calls v.VisitSaveNodeInstance().
func (op SaveNodeInstance) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitSaveNodeInstance(ctx, op)
}

func (op SaveNodeInstance) entityKey() entityKey {
	return entityKey{"node-instance", op.Instance.NodeID, op.Instance.InstanceID}
}
