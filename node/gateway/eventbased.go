package gateway

import (
	"context"

	"github.com/millrace/weir/deactivate"
	"github.com/millrace/weir/node"
)

// EventBased is the behavior of an event-based gateway node. It arms every
// outgoing catching event and waits; the first event to occur wins the
// race, and the remaining alternatives are deactivated.
type EventBased struct {
	// Deactivation fans deactivations out to the losing alternatives.
	Deactivation *deactivate.Coordinator
}

// Activate arms every outgoing catch node and leaves the gateway active,
// waiting for one of them to report an occurrence.
func (b *EventBased) Activate(ctx context.Context, s *node.Scope) error {
	done, err := s.Join()
	if err != nil {
		return err
	}
	if !done {
		return nil
	}

	s.ActivateOutgoing()

	return nil
}

// Trigger elects the reporting catch node as the winner of the race.
//
// Occurrences reported after the gateway has passed are dropped by the
// terminal-state guard, which is what resolves near-simultaneous
// occurrences: the first report wins, the rest never reach this method.
func (b *EventBased) Trigger(ctx context.Context, s *node.Scope) error {
	winner := s.Envelope.SourceID
	if winner == "" {
		s.Log("ignoring trigger with no source node")
		return nil
	}

	if err := s.Pass(); err != nil {
		return err
	}

	s.SendWinning(winner)

	var losers []string
	for _, id := range s.Node.Outgoing {
		if id != winner {
			losers = append(losers, id)
		}
	}

	b.Deactivation.DeactivateDeferred(s, losers...)

	return nil
}
