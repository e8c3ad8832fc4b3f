package boltpersistence

import (
	"context"

	"github.com/millrace/weir/internal/x/bboltx"
	"github.com/millrace/weir/persistence"
	"go.etcd.io/bbolt"
)

// LoadProcessInstance loads a process instance record.
//
// If the instance does not exist, ErrInstanceNotFound is returned.
func (ds *dataStore) LoadProcessInstance(
	_ context.Context,
	instanceID string,
) (_ persistence.ProcessInstance, err error) {
	defer bboltx.Recover(&err)

	var inst persistence.ProcessInstance
	found := false

	bboltx.View(
		ds.db,
		func(tx *bbolt.Tx) {
			if b := bboltx.Bucket(
				tx,
				ds.key,
				processInstanceBucketKey,
			); b != nil {
				if data := b.Get([]byte(instanceID)); data != nil {
					inst = unmarshalProcessInstance(data)
					found = true
				}
			}
		},
	)

	if !found {
		return persistence.ProcessInstance{}, persistence.ErrInstanceNotFound
	}

	return inst, nil
}

// VisitSaveProcessInstance applies the changes in a "SaveProcessInstance"
// operation to the database.
func (c *committer) VisitSaveProcessInstance(
	_ context.Context,
	op persistence.SaveProcessInstance,
) error {
	inst := op.Instance

	b := bboltx.CreateBucketIfNotExists(
		c.root,
		processInstanceBucketKey,
	)

	var existing uint64
	if data := b.Get([]byte(inst.InstanceID)); data != nil {
		existing = unmarshalProcessInstance(data).Revision
	}

	if inst.Revision != existing {
		return persistence.ConflictError{
			Cause: op,
		}
	}

	inst.Revision++
	bboltx.Put(b, []byte(inst.InstanceID), marshal(inst))

	return nil
}

// VisitArchiveProcessInstance applies the changes in an
// "ArchiveProcessInstance" operation to the database.
//
// The instance's records move from the live keyspace into the archive bucket.
func (c *committer) VisitArchiveProcessInstance(
	_ context.Context,
	op persistence.ArchiveProcessInstance,
) error {
	id := []byte(op.Instance.InstanceID)

	if err := c.checkRevision(id, op.Instance.Revision, op); err != nil {
		return err
	}

	if b := bboltx.Bucket(c.root, processInstanceBucketKey); b != nil {
		bboltx.Put(
			bboltx.CreateBucketIfNotExists(
				c.root,
				archiveBucketKey,
				processInstanceBucketKey,
			),
			id,
			marshal(op.Instance),
		)
		bboltx.Delete(b, id)
	}

	if b := bboltx.Bucket(c.root, nodeInstanceBucketKey, id); b != nil {
		records := map[string][]byte{}

		bboltx.Must(b.ForEach(func(k, v []byte) error {
			records[string(k)] = append([]byte(nil), v...)
			return nil
		}))

		dst := bboltx.CreateBucketIfNotExists(
			c.root,
			archiveBucketKey,
			nodeInstanceBucketKey,
			id,
		)

		for k, v := range records {
			bboltx.Put(dst, []byte(k), v)
		}

		bboltx.DeleteBucket(
			bboltx.Bucket(c.root, nodeInstanceBucketKey),
			id,
		)
	}

	c.removeInstanceAuxiliary(id)

	return nil
}

// VisitRemoveProcessInstance applies the changes in a
// "RemoveProcessInstance" operation to the database.
//
// All records belonging to the instance are removed. Removing an instance
// that does not exist is not an error.
func (c *committer) VisitRemoveProcessInstance(
	_ context.Context,
	op persistence.RemoveProcessInstance,
) error {
	id := []byte(op.Instance.InstanceID)

	if err := c.checkRevision(id, op.Instance.Revision, op); err != nil {
		return err
	}

	if b := bboltx.Bucket(c.root, processInstanceBucketKey); b != nil {
		bboltx.Delete(b, id)
	}

	if b := bboltx.Bucket(c.root, nodeInstanceBucketKey); b != nil {
		bboltx.DeleteBucket(b, id)
	}

	c.removeInstanceAuxiliary(id)

	return nil
}

// checkRevision enforces optimistic concurrency control for operations that
// require an existing process instance record at a specific revision.
func (c *committer) checkRevision(
	id []byte,
	revision uint64,
	op persistence.Operation,
) error {
	if b := bboltx.Bucket(c.root, processInstanceBucketKey); b != nil {
		if data := b.Get(id); data != nil {
			if unmarshalProcessInstance(data).Revision == revision {
				return nil
			}
		}
	}

	return persistence.ConflictError{
		Cause: op,
	}
}

// removeInstanceAuxiliary removes the data objects and timers belonging to a
// process instance.
func (c *committer) removeInstanceAuxiliary(id []byte) {
	if b := bboltx.Bucket(c.root, dataObjectBucketKey); b != nil {
		bboltx.DeleteBucket(b, id)
	}

	if b := bboltx.Bucket(c.root, timerBucketKey); b != nil {
		var stale [][]byte

		bboltx.Must(b.ForEach(func(k, v []byte) error {
			if unmarshalTimer(v).InstanceID == string(id) {
				stale = append(stale, k)
			}
			return nil
		}))

		for _, k := range stale {
			bboltx.Delete(b, k)
		}
	}
}
