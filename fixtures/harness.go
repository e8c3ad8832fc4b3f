package fixtures

import (
	"context"
	"time"

	"github.com/dogmatiq/linger/backoff"
	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
)

// Harness runs one worker per flow node of a process definition, for tests
// that exercise node behaviors through real message routing.
//
// Nodes without an explicit behavior get a recording stub; every message
// handled by such a node is mirrored to the channel in Received.
type Harness struct {
	Process   *definition.Process
	DataStore *DataStoreStub
	Exchange  *node.Exchange
	Packer    *envelope.Packer
	Workers   map[string]*node.Worker
	Received  map[string]chan *envelope.Envelope
}

// NewHarness returns a harness for the given process definition.
//
// behaviors assigns explicit behaviors to node IDs; it may be nil.
func NewHarness(
	p *definition.Process,
	behaviors map[string]node.Behavior,
) *Harness {
	h := &Harness{
		Process:   p,
		DataStore: NewDataStoreStub(),
		Exchange:  &node.Exchange{},
		Packer:    &envelope.Packer{ProcessKey: p.Key},
		Workers:   map[string]*node.Worker{},
		Received:  map[string]chan *envelope.Envelope{},
	}

	for _, n := range p.Nodes {
		b, ok := behaviors[n.ID]
		if !ok {
			ch := make(chan *envelope.Envelope, 10)
			h.Received[n.ID] = ch

			record := func(_ context.Context, s *node.Scope) error {
				ch <- s.Envelope
				return nil
			}

			b = &BehaviorStub{
				ActivateFunc:     record,
				TriggerFunc:      record,
				DeactivateFunc:   record,
				WinningFunc:      record,
				LoopContinueFunc: record,
				LoopEndFunc:      record,
			}
		}

		h.Workers[n.ID] = &node.Worker{
			Process:   p,
			Node:      n,
			Behavior:  b,
			DataStore: h.DataStore,
			Packer:    h.Packer,
			Exchange:  h.Exchange,

			// Fail fast in tests rather than backing off for real.
			BackoffStrategy: backoff.Constant(5 * time.Millisecond),
		}

		h.Exchange.Register(h.Workers[n.ID])
	}

	return h
}

// Start runs every worker until ctx is canceled.
func (h *Harness) Start(ctx context.Context) {
	for _, w := range h.Workers {
		go w.Run(ctx)
	}
}

// Post packs a message, delivers it, and waits for its acknowledgment.
func (h *Harness) Post(
	ctx context.Context,
	k message.Kind,
	nodeID, instanceID string,
	payload []byte,
) error {
	env := h.Packer.Pack(k, nodeID, instanceID, payload)
	return h.Deliver(ctx, env)
}

// Deliver attaches an acknowledgment handle to the given envelope, delivers
// it, and waits for the acknowledgment.
func (h *Harness) Deliver(ctx context.Context, env *envelope.Envelope) error {
	env.Ack = commit.New()

	if err := h.Exchange.Post(env); err != nil {
		return err
	}

	return env.Ack.Wait(ctx)
}
