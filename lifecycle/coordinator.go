// Package lifecycle implements the process-instance lifecycle: creation of
// the full instance tree, end-of-level detection, race-loss resolution, and
// exactly-once finalization.
package lifecycle

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/persistence"
)

// Policy controls what happens to a process instance's records when the
// instance ends.
type Policy byte

const (
	// Archive moves the instance's records to the archive keyspace.
	Archive Policy = iota

	// Delete removes the instance's records entirely.
	Delete
)

// Coordinator manages the lifecycle of the instances of one process
// definition.
type Coordinator struct {
	// Process is the process definition.
	Process *definition.Process

	// DataStore is the process's data store.
	DataStore persistence.DataStore

	// Policy controls finalization. The zero-value archives ended instances.
	Policy Policy

	// GenerateID is a function used to generate instance IDs. If it is nil, a
	// UUID is generated.
	GenerateID func() string

	// Now returns the current time. If it is nil, time.Now() is used.
	Now func() time.Time
}

// CreateInstance creates a new process instance.
//
// It walks the full definition tree, including nested sub-processes, creating
// one inactive node instance record per definition node, and mirrors every
// sequence-flow edge so that race-resolution walks are pure data queries.
func (c *Coordinator) CreateInstance(
	ctx context.Context,
	metadata map[string]string,
) (persistence.ProcessInstance, error) {
	pi := persistence.ProcessInstance{
		ProcessKey: c.Process.Key,
		InstanceID: c.generateID(),
		StartNodes: c.Process.StartNodes(),
		Metadata:   metadata,
		StartedAt:  c.now(),
	}

	batch := persistence.Batch{
		persistence.SaveProcessInstance{
			Instance: pi,
		},
	}

	for _, n := range c.Process.Nodes {
		batch = append(batch, persistence.SaveNodeInstance{
			Instance: persistence.NodeInstance{
				ProcessKey: c.Process.Key,
				NodeID:     n.ID,
				InstanceID: pi.InstanceID,
				State:      persistence.Inactive,
			},
		})

		for _, to := range n.Outgoing {
			pi.Edges = append(pi.Edges, persistence.Edge{
				From: n.ID,
				To:   to,
			})
		}
	}

	// The edges are accumulated after the save operation was added to the
	// batch; re-point it at the completed record.
	batch[0] = persistence.SaveProcessInstance{
		Instance: pi,
	}

	if err := c.DataStore.Persist(ctx, batch); err != nil {
		return persistence.ProcessInstance{}, err
	}

	pi.Revision++

	return pi, nil
}

// EndReached returns true if no node instance at the given end node's nesting
// level remains active.
//
// End events at the level are excluded; they remain active between token
// arrivals and do not hold tokens of their own.
func (c *Coordinator) EndReached(
	ctx context.Context,
	instanceID, endNodeID string,
) (bool, error) {
	level := c.Process.MustNode(endNodeID).Parent

	instances, err := c.DataStore.ListNodeInstances(ctx, instanceID)
	if err != nil {
		return false, err
	}

	for _, inst := range instances {
		n, ok := c.Process.Node(inst.NodeID)
		if !ok || n.Parent != level || n.Kind == definition.EndEvent {
			continue
		}

		if inst.State == persistence.Active {
			return false, nil
		}
	}

	return true, nil
}

// LosingBranches finds the sibling branches of the given node that never
// fired: the losers of a non-exclusive join.
//
// It walks backward over the instance's mirrored edges from the given node,
// collecting every node that has not passed, and stopping each path at the
// first already-passed node.
func (c *Coordinator) LosingBranches(
	ctx context.Context,
	instanceID, nodeID string,
) ([]string, error) {
	pi, err := c.DataStore.LoadProcessInstance(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	instances, err := c.DataStore.ListNodeInstances(ctx, instanceID)
	if err != nil {
		return nil, err
	}

	states := make(map[string]persistence.State, len(instances))
	for _, inst := range instances {
		states[inst.NodeID] = inst.State
	}

	var (
		losers  []string
		visited = map[string]struct{}{
			nodeID: {},
		}
		walk func(id string)
	)

	walk = func(id string) {
		for _, from := range pi.PrecedersOf(id) {
			if _, ok := visited[from]; ok {
				continue
			}
			visited[from] = struct{}{}

			if states[from] == persistence.Passed {
				continue
			}

			losers = append(losers, from)
			walk(from)
		}
	}

	walk(nodeID)

	return losers, nil
}

// Finalize ends the process instance, archiving or deleting its records
// according to the coordinator's policy.
//
// Finalization happens exactly once: the operation is guarded by the process
// instance record's revision, and an instance that has already ended, or
// whose record is already gone, is left untouched.
func (c *Coordinator) Finalize(ctx context.Context, instanceID string) error {
	pi, err := c.DataStore.LoadProcessInstance(ctx, instanceID)
	if err != nil {
		if err == persistence.ErrInstanceNotFound {
			return nil
		}

		return err
	}

	if pi.Ended() {
		return nil
	}

	pi.EndedAt = c.now()

	var op persistence.Operation
	if c.Policy == Delete {
		op = persistence.RemoveProcessInstance{
			Instance: pi,
		}
	} else {
		op = persistence.ArchiveProcessInstance{
			Instance: pi,
		}
	}

	return c.DataStore.Persist(ctx, persistence.Batch{op})
}

func (c *Coordinator) generateID() string {
	if c.GenerateID != nil {
		return c.GenerateID()
	}

	return uuid.NewString()
}

func (c *Coordinator) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}

	return time.Now()
}
