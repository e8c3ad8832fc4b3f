// Package memorypersistence implements the persistence layer in memory.
//
// It is intended for testing and for engines whose state is allowed to be
// lost on restart.
package memorypersistence

import (
	"context"
	"sync"

	"github.com/millrace/weir/persistence"
)

// Provider is an implementation of persistence.Provider that stores process
// state in memory.
type Provider struct {
	m         sync.Mutex
	databases map[string]*database
}

// Open returns a data-store for a specific process definition.
//
// k is the identity key of the process definition.
//
// Data-stores are opened for exclusive use. If the data-store for this
// process is already open, ErrDataStoreLocked is returned.
func (p *Provider) Open(_ context.Context, k string) (persistence.DataStore, error) {
	p.m.Lock()
	defer p.m.Unlock()

	if p.databases == nil {
		p.databases = map[string]*database{}
	}

	db, ok := p.databases[k]

	if !ok {
		db = newDatabase()
		p.databases[k] = db
	}

	if db.TryOpen() {
		return &dataStore{db: db}, nil
	}

	return nil, persistence.ErrDataStoreLocked
}
