package definition

import "time"

// EventKind enumerates the modeled event semantics a flow node can carry.
type EventKind byte

const (
	// EventNone is an event with no modeled behavior.
	EventNone EventKind = iota

	// EventMessage sends or receives an integration message, depending on
	// whether the owning node is throwing or catching.
	EventMessage

	// EventTimer fires at a modeled date, after a modeled duration, or on a
	// modeled cycle.
	EventTimer

	// EventSignal publishes or subscribes to a named signal visible to all
	// processes hosted by the engine.
	EventSignal

	// EventLink is the signal mechanism scoped to a single process, used to
	// jump between disconnected branches.
	EventLink

	// EventTerminate ends the entire process instance, cancelling every other
	// node.
	EventTerminate
)

func (k EventKind) String() string {
	switch k {
	case EventNone:
		return "none"
	case EventMessage:
		return "message"
	case EventTimer:
		return "timer"
	case EventSignal:
		return "signal"
	case EventLink:
		return "link"
	case EventTerminate:
		return "terminate"
	default:
		return "<unknown event kind>"
	}
}

// EventSpec describes the event semantics modeled on a flow node.
type EventSpec struct {
	// Kind is the modeled event kind.
	Kind EventKind

	// Name is the message, signal or link name, for the kinds that have one.
	Name string

	// DataObjectID, if non-empty, identifies the data object whose content is
	// used as the payload of a thrown message.
	DataObjectID string

	// Timer describes when a timer event fires. It is nil unless Kind is
	// EventTimer.
	Timer *TimerSpec
}

// TimerSpec describes when a timer event fires.
//
// Exactly one of At, After and Every is expected to be set.
type TimerSpec struct {
	// At is an absolute fire time.
	At time.Time

	// After is a delay relative to the activation of the owning node.
	After time.Duration

	// Every is the interval of a cyclic timer.
	Every time.Duration

	// Count is the number of firings of a cyclic timer. Zero means the cycle
	// is unbounded.
	Count int
}

// First returns the first fire time for a timer activated at the given time.
func (s *TimerSpec) First(activatedAt time.Time) time.Time {
	switch {
	case !s.At.IsZero():
		return s.At
	case s.After > 0:
		return activatedAt.Add(s.After)
	default:
		return activatedAt.Add(s.Every)
	}
}

// Next returns the next fire time for a cyclic timer that has already fired n
// times, the most recent firing being at the given time.
//
// It returns false if the timer does not fire again.
func (s *TimerSpec) Next(firedAt time.Time, n int) (time.Time, bool) {
	if s.Every <= 0 {
		return time.Time{}, false
	}

	if s.Count > 0 && n >= s.Count {
		return time.Time{}, false
	}

	return firedAt.Add(s.Every), true
}
