package definition

// LoopKind enumerates the loop semantics a flow node can carry.
type LoopKind byte

const (
	// LoopNone performs the activity exactly once.
	LoopNone LoopKind = iota

	// LoopStandard repeats the activity while a boolean condition holds,
	// optionally bounded by a maximum count.
	LoopStandard

	// LoopMultiInstance performs one activity instance per element of a
	// collection, sequentially or in parallel.
	LoopMultiInstance
)

func (k LoopKind) String() string {
	switch k {
	case LoopNone:
		return "none"
	case LoopStandard:
		return "standard"
	case LoopMultiInstance:
		return "multi-instance"
	default:
		return "<unknown loop kind>"
	}
}

// LoopSpec describes the loop semantics modeled on an activity.
type LoopSpec struct {
	// Kind is the modeled loop kind.
	Kind LoopKind

	// TestBefore controls whether a standard loop evaluates its condition
	// before the first iteration.
	TestBefore bool

	// Max is the maximum iteration count of a standard loop. Zero means
	// unbounded.
	Max int

	// Condition is the standard loop condition. The loop continues while it
	// evaluates to true.
	Condition Expression

	// Sequential controls whether a multi-instance loop performs its
	// instances one at a time.
	Sequential bool

	// Cardinality is the modeled number of instances of a multi-instance
	// loop. If both Cardinality and CollectionID are modeled, Cardinality
	// takes precedence over the collection size.
	Cardinality int

	// CollectionID identifies the data object holding the input collection of
	// a multi-instance loop.
	CollectionID string

	// OutputID identifies the data object the accumulated results of a
	// multi-instance loop are written to.
	OutputID string

	// Completion is the multi-instance completion condition. The loop ends
	// early once it evaluates to true.
	Completion Expression
}
