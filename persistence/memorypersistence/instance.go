package memorypersistence

import (
	"context"

	"github.com/millrace/weir/persistence"
)

// LoadNodeInstance loads the instance record of a flow node.
//
// If the record does not exist, a freshly-inactive record at revision zero is
// returned.
func (ds *dataStore) LoadNodeInstance(
	_ context.Context,
	nodeID, instanceID string,
) (persistence.NodeInstance, error) {
	ds.db.mutex.RLock()
	defer ds.db.mutex.RUnlock()

	key := nodeInstanceKey{nodeID, instanceID}
	if inst, ok := ds.db.nodeInstances[key]; ok {
		return inst, nil
	}

	return persistence.NodeInstance{
		NodeID:     nodeID,
		InstanceID: instanceID,
	}, nil
}

// ListNodeInstances returns every node instance record belonging to the given
// process instance.
func (ds *dataStore) ListNodeInstances(
	_ context.Context,
	instanceID string,
) ([]persistence.NodeInstance, error) {
	ds.db.mutex.RLock()
	defer ds.db.mutex.RUnlock()

	var instances []persistence.NodeInstance

	for k, inst := range ds.db.nodeInstances {
		if k.instanceID == instanceID {
			instances = append(instances, inst)
		}
	}

	return instances, nil
}

// VisitSaveNodeInstance returns an error if a "SaveNodeInstance" operation
// can not be applied to the database.
func (v *validator) VisitSaveNodeInstance(
	_ context.Context,
	op persistence.SaveNodeInstance,
) error {
	inst := op.Instance
	key := nodeInstanceKey{inst.NodeID, inst.InstanceID}
	old := v.db.nodeInstances[key]

	if inst.Revision == old.Revision {
		return nil
	}

	return persistence.ConflictError{
		Cause: op,
	}
}

// VisitSaveNodeInstance applies the changes in a "SaveNodeInstance" operation
// to the database.
func (c *committer) VisitSaveNodeInstance(
	_ context.Context,
	op persistence.SaveNodeInstance,
) error {
	inst := op.Instance
	inst.Revision++

	key := nodeInstanceKey{inst.NodeID, inst.InstanceID}
	c.db.nodeInstances[key] = inst

	return nil
}
