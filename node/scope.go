package node

import (
	"context"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/persistence"
)

// Scope exposes operations available to a behavior while it handles a single
// message.
//
// State changes and outbound messages are buffered; the worker persists the
// accumulated operations as one atomic batch, and only then releases the
// outbound messages.
type Scope struct {
	// Process is the definition of the process the node belongs to.
	Process *definition.Process

	// Node is the definition of the node being executed.
	Node *definition.FlowNode

	// Envelope is the message being handled.
	Envelope *envelope.Envelope

	// Instance is the node's instance record. The behavior mutates it in
	// place and calls Save() to include it in the unit-of-work.
	Instance *persistence.NodeInstance

	// DataStore is the process's data store, for read-only queries.
	DataStore persistence.DataStore

	// Packer is used to pack outbound messages.
	Packer *envelope.Packer

	// Logger is the target for log messages about the node.
	Logger logging.Logger

	// Now returns the current time.
	Now func() time.Time

	saved    bool
	batch    persistence.Batch
	outbound []*envelope.Envelope
	deferred []func(context.Context) error

	processInstance *persistence.ProcessInstance
}

// Defer registers fn to run once the unit-of-work has been persisted.
//
// Deferred functions are retried until they succeed; they must be idempotent
// with respect to the persisted state they act on.
func (s *Scope) Defer(fn func(context.Context) error) {
	s.deferred = append(s.deferred, fn)
}

// Save includes the instance record in the unit-of-work.
func (s *Scope) Save() {
	s.saved = true
}

// Do adds arbitrary persistence operations to the unit-of-work.
func (s *Scope) Do(ops ...persistence.Operation) {
	s.batch = append(s.batch, ops...)
}

// Post buffers an outbound envelope for delivery after the unit-of-work is
// persisted.
func (s *Scope) Post(envs ...*envelope.Envelope) {
	s.outbound = append(s.outbound, envs...)
}

// SendActivation buffers an Activation addressed to the given node.
func (s *Scope) SendActivation(nodeID string) {
	s.Post(
		s.Packer.PackChild(
			s.Envelope,
			message.Activation,
			s.Node.ID,
			nodeID,
			nil,
		),
	)
}

// SendTrigger buffers a Trigger addressed to the given node.
func (s *Scope) SendTrigger(nodeID string, payload []byte) {
	s.Post(
		s.Packer.PackChild(
			s.Envelope,
			message.Trigger,
			s.Node.ID,
			nodeID,
			payload,
		),
	)
}

// SendWinning buffers a Winning addressed to the given node.
func (s *Scope) SendWinning(nodeID string) {
	s.Post(
		s.Packer.PackChild(
			s.Envelope,
			message.Winning,
			s.Node.ID,
			nodeID,
			nil,
		),
	)
}

// PostSelf buffers a message of the given kind addressed to the node itself.
//
// Looping activities use self-posted messages so that loop iterations respect
// the one-message-at-a-time discipline.
func (s *Scope) PostSelf(k message.Kind, payload []byte) {
	s.Post(
		s.Packer.PackChild(
			s.Envelope,
			k,
			s.Node.ID,
			s.Node.ID,
			payload,
		),
	)
}

// ActivateOutgoing buffers one Activation per outgoing sequence flow.
func (s *Scope) ActivateOutgoing() {
	for _, id := range s.Node.Outgoing {
		s.SendActivation(id)
	}
}

// ProcessInstance loads the process instance record the message relates to.
//
// The record is memoized for the remainder of the message.
func (s *Scope) ProcessInstance(ctx context.Context) (persistence.ProcessInstance, error) {
	if s.processInstance == nil {
		pi, err := s.DataStore.LoadProcessInstance(ctx, s.Envelope.InstanceID)
		if err != nil {
			return persistence.ProcessInstance{}, err
		}

		s.processInstance = &pi
	}

	return *s.processInstance, nil
}

// InstanceID returns the ID of the process instance the message relates to.
func (s *Scope) InstanceID() string {
	return s.Envelope.InstanceID
}

// LoadDataObject loads the content of a data object belonging to the process
// instance.
func (s *Scope) LoadDataObject(ctx context.Context, id string) ([]byte, error) {
	return s.DataStore.LoadDataObject(ctx, s.Envelope.InstanceID, id)
}

// SaveDataObject includes a data object write in the unit-of-work.
func (s *Scope) SaveDataObject(id string, content []byte) {
	s.Do(persistence.SaveDataObject{
		Object: persistence.DataObject{
			InstanceID:   s.Envelope.InstanceID,
			DataObjectID: id,
			Content:      content,
		},
	})
}

// Log logs a message about the node.
func (s *Scope) Log(f string, v ...interface{}) {
	logging.Log(s.Logger, f, v...)
}

// Debug logs a debug message about the node.
func (s *Scope) Debug(f string, v ...interface{}) {
	logging.Debug(s.Logger, f, v...)
}

// Join records the firing of one incoming sequence flow.
//
// The first firing activates the instance, stamps its start time, and
// captures the number of required flows. It returns true when the required
// count has been reached.
func (s *Scope) Join() (bool, error) {
	if s.Instance.FlowsFired == 0 {
		// An already-active instance stays active; a terminal one must reject
		// the firing with no counter movement.
		if s.Instance.State != persistence.Active {
			if err := s.Instance.Transition(persistence.Active); err != nil {
				return false, err
			}
		}

		s.Instance.StartedAt = s.Now()
		s.Instance.FlowsNeeded = s.Node.RequiredFlows()
	}

	s.Instance.FlowsFired++
	s.Save()

	return s.Instance.FlowsFired == s.Instance.FlowsNeeded, nil
}

// Pass moves the instance to the Passed state and stamps its end time.
func (s *Scope) Pass() error {
	if err := s.Instance.Transition(persistence.Passed); err != nil {
		return err
	}

	s.Instance.EndedAt = s.Now()
	s.Save()

	return nil
}

var _ definition.ExpressionEnv = (*Scope)(nil)
