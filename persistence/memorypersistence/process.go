package memorypersistence

import (
	"context"

	"github.com/millrace/weir/persistence"
)

// LoadProcessInstance loads a process instance record.
func (ds *dataStore) LoadProcessInstance(
	_ context.Context,
	instanceID string,
) (persistence.ProcessInstance, error) {
	ds.db.mutex.RLock()
	defer ds.db.mutex.RUnlock()

	if inst, ok := ds.db.processInstances[instanceID]; ok {
		return inst, nil
	}

	return persistence.ProcessInstance{}, persistence.ErrInstanceNotFound
}

// VisitSaveProcessInstance returns an error if a "SaveProcessInstance"
// operation can not be applied to the database.
func (v *validator) VisitSaveProcessInstance(
	_ context.Context,
	op persistence.SaveProcessInstance,
) error {
	inst := op.Instance
	old := v.db.processInstances[inst.InstanceID]

	if inst.Revision == old.Revision {
		return nil
	}

	return persistence.ConflictError{
		Cause: op,
	}
}

// VisitArchiveProcessInstance returns an error if an
// "ArchiveProcessInstance" operation can not be applied to the database.
func (v *validator) VisitArchiveProcessInstance(
	_ context.Context,
	op persistence.ArchiveProcessInstance,
) error {
	inst := op.Instance

	if old, ok := v.db.processInstances[inst.InstanceID]; ok {
		if inst.Revision == old.Revision {
			return nil
		}
	}

	return persistence.ConflictError{
		Cause: op,
	}
}

// VisitRemoveProcessInstance returns an error if a "RemoveProcessInstance"
// operation can not be applied to the database.
func (v *validator) VisitRemoveProcessInstance(
	_ context.Context,
	op persistence.RemoveProcessInstance,
) error {
	inst := op.Instance

	if old, ok := v.db.processInstances[inst.InstanceID]; ok {
		if inst.Revision == old.Revision {
			return nil
		}
	}

	return persistence.ConflictError{
		Cause: op,
	}
}

// VisitSaveProcessInstance applies the changes in a "SaveProcessInstance"
// operation to the database.
func (c *committer) VisitSaveProcessInstance(
	_ context.Context,
	op persistence.SaveProcessInstance,
) error {
	inst := op.Instance
	inst.Revision++

	c.db.processInstances[inst.InstanceID] = inst

	return nil
}

// VisitArchiveProcessInstance applies the changes in an
// "ArchiveProcessInstance" operation to the database.
func (c *committer) VisitArchiveProcessInstance(
	_ context.Context,
	op persistence.ArchiveProcessInstance,
) error {
	c.db.archiveInstanceRecords(op.Instance)
	return nil
}

// VisitRemoveProcessInstance applies the changes in a
// "RemoveProcessInstance" operation to the database.
func (c *committer) VisitRemoveProcessInstance(
	_ context.Context,
	op persistence.RemoveProcessInstance,
) error {
	c.db.removeInstanceRecords(op.Instance.InstanceID)
	return nil
}
