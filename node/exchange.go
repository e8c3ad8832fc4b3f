package node

import (
	"fmt"
	"sync"

	"github.com/millrace/weir/envelope"
)

// Exchange routes envelopes to the worker that owns the target flow node.
//
// There is one exchange per engine; it is the single logical addressing space
// within which node references are location-transparent.
type Exchange struct {
	m       sync.RWMutex
	workers map[exchangeKey]*Worker
}

type exchangeKey struct {
	processKey string
	nodeID     string
}

// Register adds a worker to the exchange.
//
// It panics if a worker is already registered for the same flow node.
func (e *Exchange) Register(w *Worker) {
	k := exchangeKey{w.Process.Key, w.Node.ID}

	e.m.Lock()
	defer e.m.Unlock()

	if _, ok := e.workers[k]; ok {
		panic(fmt.Sprintf(
			"worker for node %s of process %s is already registered",
			k.nodeID,
			k.processKey,
		))
	}

	if e.workers == nil {
		e.workers = map[exchangeKey]*Worker{}
	}

	e.workers[k] = w
}

// Post delivers an envelope to the worker that owns the target node.
//
// Delivery is fire-and-forget; it never blocks. An error is returned only if
// no worker is registered for the target node, in which case the envelope's
// acknowledgment handle, if any, is resolved with the same error.
func (e *Exchange) Post(env *envelope.Envelope) error {
	e.m.RLock()
	w, ok := e.workers[exchangeKey{env.ProcessKey, env.NodeID}]
	e.m.RUnlock()

	if !ok {
		err := UnknownTargetError{
			ProcessKey: env.ProcessKey,
			NodeID:     env.NodeID,
		}

		env.ResolveAck(err)

		return err
	}

	w.Post(env)

	return nil
}

// UnknownTargetError indicates that an envelope was addressed to a flow node
// that no worker is registered for.
type UnknownTargetError struct {
	ProcessKey string
	NodeID     string
}

func (e UnknownTargetError) Error() string {
	return fmt.Sprintf(
		"no worker is registered for node %s of process %s",
		e.NodeID,
		e.ProcessKey,
	)
}
