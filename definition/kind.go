package definition

// Kind enumerates the kinds of flow node that can appear in a process
// definition.
type Kind byte

const (
	// StartEvent is an event that begins a process instance (or the body of a
	// sub-process) when triggered.
	StartEvent Kind = iota

	// EndEvent is an event that marks the completion of one nesting level of
	// a process instance.
	EndEvent

	// IntermediateCatchEvent is an event that holds its branch until an
	// external stimulus arrives.
	IntermediateCatchEvent

	// IntermediateThrowEvent is an event that produces a side effect as the
	// branch passes through it.
	IntermediateThrowEvent

	// BoundaryEvent is a catching event attached to the boundary of an
	// activity, interrupting the activity when triggered.
	BoundaryEvent

	// ExclusiveGateway routes to exactly one outgoing node, chosen by an
	// ordered list of guard expressions.
	ExclusiveGateway

	// ParallelGateway waits for all incoming flows, then fires all outgoing
	// flows.
	ParallelGateway

	// ComplexGateway waits for a modeled number of incoming flows, then fires
	// all outgoing flows and cancels the branches that never arrived.
	ComplexGateway

	// EventBasedGateway activates all outgoing catching events and lets the
	// first one to be triggered win the race.
	EventBasedGateway

	// SendTask dispatches an outbound integration message.
	SendTask

	// ReceiveTask waits for an inbound integration message.
	ReceiveTask

	// ServiceTask invokes an external service and waits for its reply.
	ServiceTask

	// SubProcess hosts a nested process fragment.
	SubProcess
)

var kindNames = map[Kind]string{
	StartEvent:             "start-event",
	EndEvent:               "end-event",
	IntermediateCatchEvent: "intermediate-catch-event",
	IntermediateThrowEvent: "intermediate-throw-event",
	BoundaryEvent:          "boundary-event",
	ExclusiveGateway:       "exclusive-gateway",
	ParallelGateway:        "parallel-gateway",
	ComplexGateway:         "complex-gateway",
	EventBasedGateway:      "event-based-gateway",
	SendTask:               "send-task",
	ReceiveTask:            "receive-task",
	ServiceTask:            "service-task",
	SubProcess:             "sub-process",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}

	return "<unknown kind>"
}

// IsEvent returns true if nodes of this kind carry event semantics.
func (k Kind) IsEvent() bool {
	switch k {
	case StartEvent,
		EndEvent,
		IntermediateCatchEvent,
		IntermediateThrowEvent,
		BoundaryEvent:
		return true
	default:
		return false
	}
}

// IsCatching returns true if nodes of this kind wait for an external stimulus
// rather than producing one.
func (k Kind) IsCatching() bool {
	switch k {
	case StartEvent, IntermediateCatchEvent, BoundaryEvent:
		return true
	default:
		return false
	}
}

// IsGateway returns true if nodes of this kind synchronize or route sequence
// flows.
func (k Kind) IsGateway() bool {
	switch k {
	case ExclusiveGateway, ParallelGateway, ComplexGateway, EventBasedGateway:
		return true
	default:
		return false
	}
}

// IsActivity returns true if nodes of this kind perform work and may carry
// loop semantics and boundary events.
func (k Kind) IsActivity() bool {
	switch k {
	case SendTask, ReceiveTask, ServiceTask, SubProcess:
		return true
	default:
		return false
	}
}
