package memorypersistence

import (
	"context"
	"sync"

	"github.com/millrace/weir/persistence"
)

// dataStore is an implementation of persistence.DataStore that stores process
// state in memory.
type dataStore struct {
	db *database

	closeOnce sync.Once
	closed    bool
}

// Persist commits a batch of operations atomically.
//
// The batch is first validated in its entirety against the current database
// state, then applied, so that a conflicting batch has no partial effect.
func (ds *dataStore) Persist(ctx context.Context, b persistence.Batch) error {
	b.MustValidate()

	ds.db.mutex.Lock()
	defer ds.db.mutex.Unlock()

	if ds.closed {
		return persistence.ErrDataStoreClosed
	}

	v := &validator{ds.db}
	if err := b.AcceptVisitor(ctx, v); err != nil {
		return err
	}

	c := &committer{ds.db}
	return b.AcceptVisitor(ctx, c)
}

// Close closes the data store.
func (ds *dataStore) Close() error {
	ds.closeOnce.Do(func() {
		ds.db.mutex.Lock()
		ds.closed = true
		ds.db.mutex.Unlock()

		ds.db.close()
	})

	return nil
}

// validator checks whether a batch of operations can be applied to the
// database without conflict. It makes no modifications.
type validator struct {
	db *database
}

// committer applies a validated batch of operations to the database.
type committer struct {
	db *database
}
