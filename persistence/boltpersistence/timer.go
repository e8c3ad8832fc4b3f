package boltpersistence

import (
	"context"
	"time"

	"github.com/millrace/weir/internal/x/bboltx"
	"github.com/millrace/weir/persistence"
	"go.etcd.io/bbolt"
)

// timerKey builds the bucket key for a (node, instance) pair.
func timerKey(nodeID, instanceID string) []byte {
	k := make([]byte, 0, len(nodeID)+len(instanceID)+1)
	k = append(k, nodeID...)
	k = append(k, 0)
	k = append(k, instanceID...)

	return k
}

// LoadDueTimers returns every persisted timer that is due at or before the
// given time.
func (ds *dataStore) LoadDueTimers(
	_ context.Context,
	now time.Time,
) (_ []persistence.Timer, err error) {
	defer bboltx.Recover(&err)

	var due []persistence.Timer

	bboltx.View(
		ds.db,
		func(tx *bbolt.Tx) {
			b := bboltx.Bucket(tx, ds.key, timerBucketKey)
			if b == nil {
				return
			}

			bboltx.Must(b.ForEach(func(_, data []byte) error {
				t := unmarshalTimer(data)
				if !t.FireAt.After(now) {
					due = append(due, t)
				}
				return nil
			}))
		},
	)

	return due, nil
}

// VisitSaveTimer applies the changes in a "SaveTimer" operation to the
// database.
func (c *committer) VisitSaveTimer(
	_ context.Context,
	op persistence.SaveTimer,
) error {
	b := bboltx.CreateBucketIfNotExists(c.root, timerBucketKey)

	bboltx.Put(
		b,
		timerKey(op.Timer.NodeID, op.Timer.InstanceID),
		marshal(op.Timer),
	)

	return nil
}

// VisitRemoveTimer applies the changes in a "RemoveTimer" operation to the
// database.
func (c *committer) VisitRemoveTimer(
	_ context.Context,
	op persistence.RemoveTimer,
) error {
	if b := bboltx.Bucket(c.root, timerBucketKey); b != nil {
		bboltx.Delete(b, timerKey(op.Timer.NodeID, op.Timer.InstanceID))
	}

	return nil
}
