package boltpersistence

import (
	"context"

	"github.com/millrace/weir/internal/x/bboltx"
	"github.com/millrace/weir/persistence"
	"go.etcd.io/bbolt"
)

// LoadNodeInstance loads the instance record of a flow node.
//
// If the record does not exist, a freshly-inactive record at revision zero is
// returned.
func (ds *dataStore) LoadNodeInstance(
	_ context.Context,
	nodeID, instanceID string,
) (_ persistence.NodeInstance, err error) {
	defer bboltx.Recover(&err)

	inst := persistence.NodeInstance{
		NodeID:     nodeID,
		InstanceID: instanceID,
	}

	bboltx.View(
		ds.db,
		func(tx *bbolt.Tx) {
			if b := bboltx.Bucket(
				tx,
				ds.key,
				nodeInstanceBucketKey,
				[]byte(instanceID),
			); b != nil {
				if data := b.Get([]byte(nodeID)); data != nil {
					inst = unmarshalNodeInstance(data)
				}
			}
		},
	)

	return inst, nil
}

// ListNodeInstances returns every node instance record belonging to the given
// process instance.
func (ds *dataStore) ListNodeInstances(
	_ context.Context,
	instanceID string,
) (_ []persistence.NodeInstance, err error) {
	defer bboltx.Recover(&err)

	var instances []persistence.NodeInstance

	bboltx.View(
		ds.db,
		func(tx *bbolt.Tx) {
			b := bboltx.Bucket(
				tx,
				ds.key,
				nodeInstanceBucketKey,
				[]byte(instanceID),
			)
			if b == nil {
				return
			}

			bboltx.Must(b.ForEach(func(_, data []byte) error {
				instances = append(instances, unmarshalNodeInstance(data))
				return nil
			}))
		},
	)

	return instances, nil
}

// VisitSaveNodeInstance applies the changes in a "SaveNodeInstance" operation
// to the database.
func (c *committer) VisitSaveNodeInstance(
	_ context.Context,
	op persistence.SaveNodeInstance,
) error {
	inst := op.Instance

	b := bboltx.CreateBucketIfNotExists(
		c.root,
		nodeInstanceBucketKey,
		[]byte(inst.InstanceID),
	)

	var existing uint64
	if data := b.Get([]byte(inst.NodeID)); data != nil {
		existing = unmarshalNodeInstance(data).Revision
	}

	if inst.Revision != existing {
		return persistence.ConflictError{
			Cause: op,
		}
	}

	inst.Revision++
	bboltx.Put(b, []byte(inst.NodeID), marshal(inst))

	return nil
}
