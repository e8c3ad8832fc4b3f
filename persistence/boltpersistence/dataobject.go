package boltpersistence

import (
	"context"

	"github.com/millrace/weir/internal/x/bboltx"
	"github.com/millrace/weir/persistence"
	"go.etcd.io/bbolt"
)

// LoadDataObject loads the content of a data object.
//
// If the data object does not exist, ErrDataObjectNotFound is returned.
func (ds *dataStore) LoadDataObject(
	_ context.Context,
	instanceID, dataObjectID string,
) (content []byte, err error) {
	defer bboltx.Recover(&err)

	found := false

	bboltx.View(
		ds.db,
		func(tx *bbolt.Tx) {
			if b := bboltx.Bucket(
				tx,
				ds.key,
				dataObjectBucketKey,
				[]byte(instanceID),
			); b != nil {
				if data := b.Get([]byte(dataObjectID)); data != nil {
					content = append([]byte(nil), data...)
					found = true
				}
			}
		},
	)

	if !found {
		return nil, persistence.ErrDataObjectNotFound
	}

	return content, nil
}

// VisitSaveDataObject applies the changes in a "SaveDataObject" operation to
// the database.
func (c *committer) VisitSaveDataObject(
	_ context.Context,
	op persistence.SaveDataObject,
) error {
	obj := op.Object

	b := bboltx.CreateBucketIfNotExists(
		c.root,
		dataObjectBucketKey,
		[]byte(obj.InstanceID),
	)

	bboltx.Put(b, []byte(obj.DataObjectID), obj.Content)

	return nil
}

// VisitRemoveDataObject applies the changes in a "RemoveDataObject" operation
// to the database.
//
// Removing a data object that does not exist is not an error.
func (c *committer) VisitRemoveDataObject(
	_ context.Context,
	op persistence.RemoveDataObject,
) error {
	if b := bboltx.Bucket(
		c.root,
		dataObjectBucketKey,
		[]byte(op.Object.InstanceID),
	); b != nil {
		bboltx.Delete(b, []byte(op.Object.DataObjectID))
	}

	return nil
}
