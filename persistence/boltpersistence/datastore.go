package boltpersistence

import (
	"context"
	"sync"

	"github.com/millrace/weir/internal/x/bboltx"
	"github.com/millrace/weir/persistence"
	"go.etcd.io/bbolt"
)

var (
	// nodeInstanceBucketKey is the root bucket for node instance records.
	//
	// The keys of this bucket are process instance IDs; the values are
	// sub-buckets mapping node IDs to CBOR-encoded node instance records.
	nodeInstanceBucketKey = []byte("node-instance")

	// processInstanceBucketKey is the root bucket for process instance
	// records, keyed by instance ID.
	processInstanceBucketKey = []byte("process-instance")

	// dataObjectBucketKey is the root bucket for data objects.
	//
	// The keys of this bucket are process instance IDs; the values are
	// sub-buckets mapping data object IDs to raw content.
	dataObjectBucketKey = []byte("data-object")

	// timerBucketKey is the root bucket for persisted timers, keyed by
	// node ID and instance ID.
	timerBucketKey = []byte("timer")

	// archiveBucketKey is the root bucket for archived records. Its layout
	// mirrors the live node-instance and process-instance buckets.
	archiveBucketKey = []byte("archive")
)

// dataStore is an implementation of persistence.DataStore for BoltDB.
type dataStore struct {
	db  *bbolt.DB
	key []byte

	closeOnce sync.Once
	release   func() error
}

// Persist commits a batch of operations atomically.
//
// The batch executes within a single BoltDB read-write transaction; an
// optimistic concurrency conflict in any operation rolls back the entire
// batch.
func (ds *dataStore) Persist(ctx context.Context, b persistence.Batch) (err error) {
	b.MustValidate()

	defer bboltx.Recover(&err)

	bboltx.Update(
		ds.db,
		func(tx *bbolt.Tx) {
			c := &committer{
				root: bboltx.CreateBucketIfNotExists(tx, ds.key),
			}

			bboltx.Must(b.AcceptVisitor(ctx, c))
		},
	)

	return nil
}

// Close closes the data store, releasing the process key for re-opening.
func (ds *dataStore) Close() error {
	var err error

	ds.closeOnce.Do(func() {
		err = ds.release()
	})

	return err
}

// committer applies a batch of operations to the database within one
// transaction.
type committer struct {
	root *bbolt.Bucket
}
