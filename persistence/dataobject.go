package persistence

import "context"

// DataObject is an application-defined datum scoped to one process instance.
type DataObject struct {
	// InstanceID is the ID of the owning process instance.
	InstanceID string

	// DataObjectID identifies the datum within the instance.
	DataObjectID string

	// Content is the datum's opaque content.
	Content []byte
}

// DataObjectRepository is an interface for reading data objects.
type DataObjectRepository interface {
	// LoadDataObject loads the content of a data object.
	//
	// It returns ErrDataObjectNotFound if no such data object exists.
	LoadDataObject(
		ctx context.Context,
		instanceID, dataObjectID string,
	) ([]byte, error)
}

// SaveDataObject is an Operation that creates or replaces a data object.
type SaveDataObject struct {
	// Object is the data object to persist. Data objects are not versioned;
	// the last write wins.
	Object DataObject
}

// AcceptVisitor calls v.VisitSaveDataObject().
func (op SaveDataObject) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitSaveDataObject(ctx, op)
}

func (op SaveDataObject) entityKey() entityKey {
	return entityKey{"data-object", op.Object.InstanceID, op.Object.DataObjectID}
}

// RemoveDataObject is an Operation that removes a data object.
//
// Removing a data object that does not exist is not an error.
type RemoveDataObject struct {
	// Object identifies the data object to remove. Its content is ignored.
	Object DataObject
}

// AcceptVisitor calls v.VisitRemoveDataObject().
func (op RemoveDataObject) AcceptVisitor(ctx context.Context, v OperationVisitor) error {
	return v.VisitRemoveDataObject(ctx, op)
}

func (op RemoveDataObject) entityKey() entityKey {
	return entityKey{"data-object", op.Object.InstanceID, op.Object.DataObjectID}
}
