package memorypersistence

import (
	"context"

	"github.com/millrace/weir/persistence"
)

// LoadDataObject loads the content of a data object.
func (ds *dataStore) LoadDataObject(
	_ context.Context,
	instanceID, dataObjectID string,
) ([]byte, error) {
	ds.db.mutex.RLock()
	defer ds.db.mutex.RUnlock()

	key := dataObjectKey{instanceID, dataObjectID}
	if content, ok := ds.db.dataObjects[key]; ok {
		return content, nil
	}

	return nil, persistence.ErrDataObjectNotFound
}

// VisitSaveDataObject always succeeds; data objects are not versioned.
func (v *validator) VisitSaveDataObject(
	_ context.Context,
	_ persistence.SaveDataObject,
) error {
	return nil
}

// VisitRemoveDataObject always succeeds; removing an absent data object is
// not an error.
func (v *validator) VisitRemoveDataObject(
	_ context.Context,
	_ persistence.RemoveDataObject,
) error {
	return nil
}

// VisitSaveDataObject applies the changes in a "SaveDataObject" operation to
// the database.
func (c *committer) VisitSaveDataObject(
	_ context.Context,
	op persistence.SaveDataObject,
) error {
	obj := op.Object
	key := dataObjectKey{obj.InstanceID, obj.DataObjectID}

	c.db.dataObjects[key] = obj.Content

	return nil
}

// VisitRemoveDataObject applies the changes in a "RemoveDataObject" operation
// to the database.
func (c *committer) VisitRemoveDataObject(
	_ context.Context,
	op persistence.RemoveDataObject,
) error {
	obj := op.Object
	key := dataObjectKey{obj.InstanceID, obj.DataObjectID}

	delete(c.db.dataObjects, key)

	return nil
}
