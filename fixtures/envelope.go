package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/message"
)

// NewEnvelope returns a new envelope containing a message of the given
// kind, addressed to the given node and instance.
//
// If id is empty, a new UUID is generated.
func NewEnvelope(
	id string,
	k message.Kind,
	nodeID, instanceID string,
) *envelope.Envelope {
	if id == "" {
		id = uuid.NewString()
	}

	return &envelope.Envelope{
		MessageID:     id,
		CausationID:   "<cause>",
		CorrelationID: "<correlation>",
		ProcessKey:    "<process-key>",
		NodeID:        nodeID,
		InstanceID:    instanceID,
		Kind:          k,
		CreatedAt:     time.Date(2024, 4, 1, 10, 30, 0, 0, time.UTC),
	}
}
