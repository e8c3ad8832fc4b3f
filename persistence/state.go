package persistence

import "fmt"

// State is the lifecycle state of a flow node instance.
type State byte

const (
	// Inactive is the state of an instance that has not yet been referenced,
	// or that has been created but not activated.
	Inactive State = iota

	// Active is the state of an instance that has been activated and is
	// waiting for further flows, an external trigger, or the completion of
	// its own work.
	Active

	// Passed is the terminal state of an instance that completed normally.
	Passed

	// Deactivated is the terminal state of an instance that was cancelled.
	Deactivated
)

func (s State) String() string {
	switch s {
	case Inactive:
		return "inactive"
	case Active:
		return "active"
	case Passed:
		return "passed"
	case Deactivated:
		return "deactivated"
	default:
		return fmt.Sprintf("<unknown state %d>", byte(s))
	}
}

// IsTerminal returns true if no further transitions are permitted out of s.
func (s State) IsTerminal() bool {
	return s == Passed || s == Deactivated
}

// transitions is the set of permitted state transitions.
//
// Any (from, to) pair absent from this table is rejected.
var transitions = map[State]map[State]struct{}{
	Inactive: {
		Active:      {},
		Passed:      {},
		Deactivated: {},
	},
	Active: {
		Passed:      {},
		Deactivated: {},
	},
}

// CanTransition returns true if the transition from s to next is permitted.
func (s State) CanTransition(next State) bool {
	_, ok := transitions[s][next]
	return ok
}
