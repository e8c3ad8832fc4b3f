package envelope

import (
	"time"

	"github.com/google/uuid"
	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/message"
)

// Packer puts messages into envelopes.
type Packer struct {
	// ProcessKey is the identity key of the process definition this packer
	// produces envelopes for.
	ProcessKey string

	// GenerateID is a function used to generate new message IDs. If it is
	// nil, a UUID is generated.
	GenerateID func() string

	// Now is a function used to get the current time. If it is nil,
	// time.Now() is used.
	Now func() time.Time
}

// Pack returns an envelope containing a message that begins a new causal
// chain, such as a message injected by the management layer or raised by a
// timer.
func (p *Packer) Pack(
	k message.Kind,
	nodeID, instanceID string,
	payload []byte,
) *Envelope {
	id := p.generateID()

	return &Envelope{
		MessageID:     id,
		CausationID:   id,
		CorrelationID: id,
		ProcessKey:    p.ProcessKey,
		NodeID:        nodeID,
		InstanceID:    instanceID,
		Kind:          k,
		Payload:       payload,
		CreatedAt:     p.now(),
	}
}

// PackWithAck is Pack with an acknowledgment handle attached.
//
// The returned commit is resolved by the receiver once the message has been
// acted upon.
func (p *Packer) PackWithAck(
	k message.Kind,
	nodeID, instanceID string,
	payload []byte,
) (*Envelope, *commit.Commit) {
	env := p.Pack(k, nodeID, instanceID, payload)
	env.Ack = commit.New()

	return env, env.Ack
}

// PackChild returns an envelope containing a message produced by a flow node
// as a result of handling the message in c, the cause.
//
// sourceID is the node producing the message, nodeID the node it is addressed
// to. The instance ID is inherited from the cause.
func (p *Packer) PackChild(
	c *Envelope,
	k message.Kind,
	sourceID, nodeID string,
	payload []byte,
) *Envelope {
	return &Envelope{
		MessageID:     p.generateID(),
		CausationID:   c.MessageID,
		CorrelationID: c.CorrelationID,
		ProcessKey:    p.ProcessKey,
		NodeID:        nodeID,
		SourceID:      sourceID,
		InstanceID:    c.InstanceID,
		Kind:          k,
		Payload:       payload,
		CreatedAt:     p.now(),
	}
}

// PackChildWithAck is PackChild with an acknowledgment handle attached.
//
// The returned commit is resolved by the receiver once the message has been
// acted upon.
func (p *Packer) PackChildWithAck(
	c *Envelope,
	k message.Kind,
	sourceID, nodeID string,
	payload []byte,
) (*Envelope, *commit.Commit) {
	env := p.PackChild(c, k, sourceID, nodeID, payload)
	env.Ack = commit.New()

	return env, env.Ack
}

func (p *Packer) now() time.Time {
	now := p.Now
	if now == nil {
		now = time.Now
	}

	return now()
}

func (p *Packer) generateID() string {
	if p.GenerateID != nil {
		return p.GenerateID()
	}

	return uuid.NewString()
}
