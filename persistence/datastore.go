package persistence

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/multierr"
)

// ErrDataStoreClosed is returned when performing any persistence operation on
// a closed data-store.
var ErrDataStoreClosed = errors.New("data store is closed")

// DataStore is an interface used by the engine to persist and retrieve all
// state for one process definition.
type DataStore interface {
	NodeInstanceRepository
	ProcessInstanceRepository
	DataObjectRepository
	TimerRepository
	Persister

	// Close closes the data store, preventing further reads and writes.
	Close() error
}

// DataStoreSet is a collection of data-stores, one per process definition.
type DataStoreSet struct {
	// Provider is used to open data-stores that are not already in the set.
	Provider Provider

	m      sync.Mutex
	stores map[string]DataStore
}

// Get returns the data-store for the process definition with the given key.
//
// If the set already contains the data-store it is returned, otherwise it is
// opened and added to the set. The caller is NOT responsible for closing it.
func (s *DataStoreSet) Get(ctx context.Context, k string) (DataStore, error) {
	s.m.Lock()
	defer s.m.Unlock()

	if ds, ok := s.stores[k]; ok {
		return ds, nil
	}

	ds, err := s.Provider.Open(ctx, k)
	if err != nil {
		return nil, err
	}

	if s.stores == nil {
		s.stores = map[string]DataStore{}
	}

	s.stores[k] = ds

	return ds, nil
}

// Close closes every data-store in the set.
func (s *DataStoreSet) Close() error {
	s.m.Lock()
	defer s.m.Unlock()

	stores := s.stores
	s.stores = nil

	var err error
	for _, ds := range stores {
		err = multierr.Append(
			err,
			ds.Close(),
		)
	}

	return err
}
