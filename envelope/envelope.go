// Package envelope defines the immutable envelopes that carry messages
// between flow nodes, and the packer that constructs them.
package envelope

import (
	"fmt"
	"time"

	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/message"
)

// Envelope is a container for a message exchanged between flow nodes.
//
// Envelopes are immutable. They are not modified after construction, and may
// be read concurrently.
type Envelope struct {
	// MessageID is a unique identifier for the message.
	MessageID string

	// CausationID is the ID of the message that directly caused this message
	// to occur.
	CausationID string

	// CorrelationID is the ID of the first message in the causal chain, which
	// for messages produced by the engine is the message that entered the
	// process instance from outside.
	CorrelationID string

	// ProcessKey is the identity key of the process definition that the
	// target node belongs to.
	ProcessKey string

	// NodeID is the ID of the flow node the message is addressed to.
	NodeID string

	// SourceID is the ID of the flow node that produced the message. It is
	// empty for messages injected from outside the engine.
	SourceID string

	// InstanceID is the ID of the process instance the message relates to.
	InstanceID string

	// Kind is the kind of the message.
	Kind message.Kind

	// Payload is an opaque application-defined payload. It may be nil.
	Payload []byte

	// CreatedAt is the time at which the envelope was created.
	CreatedAt time.Time

	// Ack, if non-nil, is resolved by the receiving node once the message has
	// been acted upon (or deliberately ignored). It is never serialized; it
	// only has meaning within a single engine.
	Ack *commit.Commit
}

func (e *Envelope) String() string {
	return fmt.Sprintf(
		"%s %s@%s/%s",
		e.Kind,
		e.NodeID,
		e.ProcessKey,
		e.InstanceID,
	)
}

// ResolveAck resolves the envelope's acknowledgment handle, if present.
func (e *Envelope) ResolveAck(err error) {
	if e.Ack != nil {
		e.Ack.Resolve(err)
	}
}
