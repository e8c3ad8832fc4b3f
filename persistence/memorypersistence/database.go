package memorypersistence

import (
	"sync"

	"github.com/millrace/weir/persistence"
)

// nodeInstanceKey identifies a flow node instance record.
type nodeInstanceKey struct {
	nodeID     string
	instanceID string
}

// dataObjectKey identifies a data object.
type dataObjectKey struct {
	instanceID   string
	dataObjectID string
}

// timerKey identifies the persisted timer of a (node, instance) pair.
type timerKey struct {
	nodeID     string
	instanceID string
}

// database is the in-memory state for one process definition.
type database struct {
	mutex sync.RWMutex
	open  bool

	nodeInstances    map[nodeInstanceKey]persistence.NodeInstance
	processInstances map[string]persistence.ProcessInstance
	dataObjects      map[dataObjectKey][]byte
	timers           map[timerKey]persistence.Timer

	archivedNodeInstances    map[nodeInstanceKey]persistence.NodeInstance
	archivedProcessInstances map[string]persistence.ProcessInstance
}

func newDatabase() *database {
	return &database{
		nodeInstances:    map[nodeInstanceKey]persistence.NodeInstance{},
		processInstances: map[string]persistence.ProcessInstance{},
		dataObjects:      map[dataObjectKey][]byte{},
		timers:           map[timerKey]persistence.Timer{},

		archivedNodeInstances:    map[nodeInstanceKey]persistence.NodeInstance{},
		archivedProcessInstances: map[string]persistence.ProcessInstance{},
	}
}

// TryOpen marks the database as open for exclusive use.
//
// It returns false if the database is already open.
func (db *database) TryOpen() bool {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if db.open {
		return false
	}

	db.open = true

	return true
}

// close releases the database for use by another opener.
func (db *database) close() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.open = false
}

// removeInstanceRecords deletes every record associated with the given
// process instance.
func (db *database) removeInstanceRecords(instanceID string) {
	delete(db.processInstances, instanceID)

	for k := range db.nodeInstances {
		if k.instanceID == instanceID {
			delete(db.nodeInstances, k)
		}
	}

	for k := range db.dataObjects {
		if k.instanceID == instanceID {
			delete(db.dataObjects, k)
		}
	}

	for k := range db.timers {
		if k.instanceID == instanceID {
			delete(db.timers, k)
		}
	}
}

// archiveInstanceRecords moves the process instance and its node instances to
// the archive maps, and deletes everything else associated with it.
func (db *database) archiveInstanceRecords(inst persistence.ProcessInstance) {
	for k, rec := range db.nodeInstances {
		if k.instanceID == inst.InstanceID {
			db.archivedNodeInstances[k] = rec
		}
	}

	db.removeInstanceRecords(inst.InstanceID)

	db.archivedProcessInstances[inst.InstanceID] = inst
}
