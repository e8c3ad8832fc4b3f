package persistence

import (
	"context"
	"fmt"
)

// Operation is a persistence operation that can be performed as part of an
// atomic batch.
type Operation interface {
	// AcceptVisitor calls the appropriate visit method on the given visitor.
	AcceptVisitor(context.Context, OperationVisitor) error

	// entityKey identifies the persisted entity the operation applies to.
	// No two operations in the same batch may share an entity key.
	entityKey() entityKey
}

// OperationVisitor visits each kind of operation.
type OperationVisitor interface {
	VisitSaveNodeInstance(context.Context, SaveNodeInstance) error
	VisitSaveProcessInstance(context.Context, SaveProcessInstance) error
	VisitArchiveProcessInstance(context.Context, ArchiveProcessInstance) error
	VisitRemoveProcessInstance(context.Context, RemoveProcessInstance) error
	VisitSaveDataObject(context.Context, SaveDataObject) error
	VisitRemoveDataObject(context.Context, RemoveDataObject) error
	VisitSaveTimer(context.Context, SaveTimer) error
	VisitRemoveTimer(context.Context, RemoveTimer) error
}

// entityKey uniquely identifies a persisted entity.
type entityKey [3]string

func (k entityKey) String() string {
	return fmt.Sprintf("%s %s/%s", k[0], k[1], k[2])
}
