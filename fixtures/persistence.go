package fixtures

import (
	"context"
	"time"

	"github.com/millrace/weir/persistence"
	"github.com/millrace/weir/persistence/memorypersistence"
)

// ProviderStub is a test implementation of the persistence.Provider
// interface.
type ProviderStub struct {
	persistence.Provider

	OpenFunc func(context.Context, string) (persistence.DataStore, error)
}

// Open returns the data-store for a specific process definition.
func (p *ProviderStub) Open(ctx context.Context, k string) (persistence.DataStore, error) {
	if p.OpenFunc != nil {
		return p.OpenFunc(ctx, k)
	}

	if p.Provider != nil {
		ds, err := p.Provider.Open(ctx, k)
		if ds != nil {
			ds = &DataStoreStub{DataStore: ds}
		}
		return ds, err
	}

	return nil, nil
}

// DataStoreStub is a test implementation of the persistence.DataStore
// interface.
type DataStoreStub struct {
	persistence.DataStore

	LoadNodeInstanceFunc    func(context.Context, string, string) (persistence.NodeInstance, error)
	ListNodeInstancesFunc   func(context.Context, string) ([]persistence.NodeInstance, error)
	LoadProcessInstanceFunc func(context.Context, string) (persistence.ProcessInstance, error)
	LoadDataObjectFunc      func(context.Context, string, string) ([]byte, error)
	LoadDueTimersFunc       func(context.Context, time.Time) ([]persistence.Timer, error)
	PersistFunc             func(context.Context, persistence.Batch) error
	CloseFunc               func() error
}

// NewDataStoreStub returns a new data-store stub backed by an in-memory
// persistence provider.
func NewDataStoreStub() *DataStoreStub {
	p := &ProviderStub{
		Provider: &memorypersistence.Provider{},
	}

	ds, err := p.Open(context.Background(), "<process-key>")
	if err != nil {
		panic(err)
	}

	return ds.(*DataStoreStub)
}

// LoadNodeInstance loads the instance record of a flow node.
func (ds *DataStoreStub) LoadNodeInstance(
	ctx context.Context,
	nodeID, instanceID string,
) (persistence.NodeInstance, error) {
	if ds.LoadNodeInstanceFunc != nil {
		return ds.LoadNodeInstanceFunc(ctx, nodeID, instanceID)
	}

	if ds.DataStore != nil {
		return ds.DataStore.LoadNodeInstance(ctx, nodeID, instanceID)
	}

	return persistence.NodeInstance{}, nil
}

// ListNodeInstances returns every node instance record belonging to the
// given process instance.
func (ds *DataStoreStub) ListNodeInstances(
	ctx context.Context,
	instanceID string,
) ([]persistence.NodeInstance, error) {
	if ds.ListNodeInstancesFunc != nil {
		return ds.ListNodeInstancesFunc(ctx, instanceID)
	}

	if ds.DataStore != nil {
		return ds.DataStore.ListNodeInstances(ctx, instanceID)
	}

	return nil, nil
}

// LoadProcessInstance loads a process instance record.
func (ds *DataStoreStub) LoadProcessInstance(
	ctx context.Context,
	instanceID string,
) (persistence.ProcessInstance, error) {
	if ds.LoadProcessInstanceFunc != nil {
		return ds.LoadProcessInstanceFunc(ctx, instanceID)
	}

	if ds.DataStore != nil {
		return ds.DataStore.LoadProcessInstance(ctx, instanceID)
	}

	return persistence.ProcessInstance{}, nil
}

// LoadDataObject loads the content of a data object.
func (ds *DataStoreStub) LoadDataObject(
	ctx context.Context,
	instanceID, dataObjectID string,
) ([]byte, error) {
	if ds.LoadDataObjectFunc != nil {
		return ds.LoadDataObjectFunc(ctx, instanceID, dataObjectID)
	}

	if ds.DataStore != nil {
		return ds.DataStore.LoadDataObject(ctx, instanceID, dataObjectID)
	}

	return nil, nil
}

// LoadDueTimers returns every persisted timer that is due at or before the
// given time.
func (ds *DataStoreStub) LoadDueTimers(
	ctx context.Context,
	now time.Time,
) ([]persistence.Timer, error) {
	if ds.LoadDueTimersFunc != nil {
		return ds.LoadDueTimersFunc(ctx, now)
	}

	if ds.DataStore != nil {
		return ds.DataStore.LoadDueTimers(ctx, now)
	}

	return nil, nil
}

// Persist commits a batch of operations atomically.
func (ds *DataStoreStub) Persist(
	ctx context.Context,
	b persistence.Batch,
) error {
	if ds.PersistFunc != nil {
		return ds.PersistFunc(ctx, b)
	}

	if ds.DataStore != nil {
		return ds.DataStore.Persist(ctx, b)
	}

	return nil
}

// Close closes the data store.
func (ds *DataStoreStub) Close() error {
	if ds.CloseFunc != nil {
		return ds.CloseFunc()
	}

	if ds.DataStore != nil {
		return ds.DataStore.Close()
	}

	return nil
}
