package message

import "fmt"

// Kind enumerates the kinds of messages exchanged between flow nodes.
type Kind byte

const (
	// Activation informs a node that one of its incoming sequence flows has
	// fired.
	Activation Kind = iota

	// Deactivation instructs a node to abandon an instance. It is sent to the
	// losing branches of a race, to interrupted activities, and during
	// termination.
	Deactivation

	// Trigger supplies the external stimulus a waiting node requires in order
	// to proceed, such as a received message, an elapsed timer or a raised
	// signal.
	Trigger

	// Winning informs a catching event that it has won the race arbitrated by
	// an event-based gateway and may activate its outgoing nodes.
	Winning

	// LoopContinue informs a looping activity that one iteration of its inner
	// action has completed.
	LoopContinue

	// LoopEnd informs a looping activity that its loop condition has been
	// satisfied and the activity as a whole is complete.
	LoopEnd
)

func (k Kind) String() string {
	switch k {
	case Activation:
		return "activation"
	case Deactivation:
		return "deactivation"
	case Trigger:
		return "trigger"
	case Winning:
		return "winning"
	case LoopContinue:
		return "loop-continue"
	case LoopEnd:
		return "loop-end"
	default:
		return fmt.Sprintf("<unknown kind %d>", byte(k))
	}
}

// Symbol returns a single-character representation of k used in log output.
func (k Kind) Symbol() string {
	switch k {
	case Activation:
		return "A"
	case Deactivation:
		return "D"
	case Trigger:
		return "T"
	case Winning:
		return "W"
	case LoopContinue:
		return "C"
	case LoopEnd:
		return "E"
	default:
		return "?"
	}
}
