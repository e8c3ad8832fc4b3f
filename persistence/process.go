package persistence

import (
	"context"
	"time"
)

// Edge is one mirrored sequence-flow edge between two node instances of the
// same process instance.
//
// The mirror allows race resolution to be performed as a pure data query,
// independent of any runtime node state.
type Edge struct {
	From string
	To   string
}

// ProcessInstance is the record of one execution of a process definition.
type ProcessInstance struct {
	// ProcessKey is the identity key of the process definition.
	ProcessKey string

	// InstanceID uniquely identifies the execution.
	InstanceID string

	// Revision is the record's current version, used to enforce optimistic
	// concurrency control. A revision of zero means the record has never been
	// persisted.
	Revision uint64

	// StartNodes are the IDs of the process's top-level start events.
	StartNodes []string

	// Edges mirror the definition's sequence-flow edges at the instance
	// level.
	Edges []Edge

	// Metadata is an application-defined map stamped at creation.
	Metadata map[string]string

	// StartedAt and EndedAt are the execution's lifecycle timestamps. A zero
	// EndedAt means the execution has not been finalized.
	StartedAt time.Time
	EndedAt   time.Time
}

// Ended returns true if the execution has been finalized.
func (i *ProcessInstance) Ended() bool {
	return !i.EndedAt.IsZero()
}

// FollowersOf returns the IDs of the nodes that directly follow the given
// node in the instance's mirrored edges.
func (i *ProcessInstance) FollowersOf(nodeID string) []string {
	var ids []string

	for _, e := range i.Edges {
		if e.From == nodeID {
			ids = append(ids, e.To)
		}
	}

	return ids
}

// PrecedersOf returns the IDs of the nodes that directly precede the given
// node in the instance's mirrored edges.
func (i *ProcessInstance) PrecedersOf(nodeID string) []string {
	var ids []string

	for _, e := range i.Edges {
		if e.To == nodeID {
			ids = append(ids, e.From)
		}
	}

	return ids
}

// ProcessInstanceRepository is an interface for reading process instance
// records.
type ProcessInstanceRepository interface {
	// LoadProcessInstance loads a process instance record.
	//
	// It returns ErrInstanceNotFound if no such instance exists.
	LoadProcessInstance(
		ctx context.Context,
		instanceID string,
	) (ProcessInstance, error)
}

// SaveProcessInstance is an Operation that creates or updates a process
// instance record.
type SaveProcessInstance struct {
	// Instance is the record to persist.
	//
	// Instance.Revision must be the revision of the record as currently
	// persisted, otherwise an optimistic concurrency conflict occurs and the
	// entire batch of operations is rejected.
	Instance ProcessInstance
}

// AcceptVisitor calls v.VisitSaveProcessInstance().
func (op SaveProcessInstance) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitSaveProcessInstance(ctx, op)
}

func (op SaveProcessInstance) entityKey() entityKey {
	return entityKey{"process-instance", op.Instance.InstanceID, ""}
}

// ArchiveProcessInstance is an Operation that moves a process instance and
// all of its associated records to the archive keyspace.
type ArchiveProcessInstance struct {
	// Instance is the record to archive.
	//
	// Instance.Revision must be the revision of the record as currently
	// persisted, otherwise an optimistic concurrency conflict occurs and the
	// entire batch of operations is rejected.
	Instance ProcessInstance
}

// AcceptVisitor calls v.VisitArchiveProcessInstance().
func (op ArchiveProcessInstance) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitArchiveProcessInstance(ctx, op)
}

func (op ArchiveProcessInstance) entityKey() entityKey {
	return entityKey{"process-instance", op.Instance.InstanceID, ""}
}

// RemoveProcessInstance is an Operation that removes a process instance and
// all of its associated records, including node instances and data objects.
type RemoveProcessInstance struct {
	// Instance is the record to remove.
	//
	// Instance.Revision must be the revision of the record as currently
	// persisted, otherwise an optimistic concurrency conflict occurs and the
	// entire batch of operations is rejected.
	Instance ProcessInstance
}

// AcceptVisitor calls v.VisitRemoveProcessInstance().
func (op RemoveProcessInstance) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitRemoveProcessInstance(ctx, op)
}

func (op RemoveProcessInstance) entityKey() entityKey {
	return entityKey{"process-instance", op.Instance.InstanceID, ""}
}
