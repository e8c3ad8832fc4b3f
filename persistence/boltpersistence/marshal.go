package boltpersistence

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/millrace/weir/internal/x/bboltx"
	"github.com/millrace/weir/persistence"
)

// marshal encodes a record using CBOR, panicking with a bboltx sentinel on
// failure.
func marshal(v interface{}) []byte {
	data, err := cbor.Marshal(v)
	if err != nil {
		bboltx.Must(fmt.Errorf("unable to marshal record: %w", err))
	}

	return data
}

// unmarshalNodeInstance decodes a node instance record.
func unmarshalNodeInstance(data []byte) persistence.NodeInstance {
	var inst persistence.NodeInstance

	if err := cbor.Unmarshal(data, &inst); err != nil {
		bboltx.Must(fmt.Errorf("unable to unmarshal node instance: %w", err))
	}

	return inst
}

// unmarshalProcessInstance decodes a process instance record.
func unmarshalProcessInstance(data []byte) persistence.ProcessInstance {
	var inst persistence.ProcessInstance

	if err := cbor.Unmarshal(data, &inst); err != nil {
		bboltx.Must(fmt.Errorf("unable to unmarshal process instance: %w", err))
	}

	return inst
}

// unmarshalTimer decodes a timer record.
func unmarshalTimer(data []byte) persistence.Timer {
	var t persistence.Timer

	if err := cbor.Unmarshal(data, &t); err != nil {
		bboltx.Must(fmt.Errorf("unable to unmarshal timer: %w", err))
	}

	return t
}
