// Package node implements the per-flow-node state machine that every node
// type shares: one worker per flow node definition, an unbounded mailbox, a
// terminal-state processability guard, and a unit-of-work scope for the
// type-specific behaviors.
package node

import "context"

// Behavior is the type-specific logic of one flow node definition.
//
// A behavior mutates only its own node instance, via the scope. Cross-node
// effects happen only by posting messages or by read-only store queries.
type Behavior interface {
	// Activate handles the firing of one of the node's incoming sequence
	// flows.
	Activate(ctx context.Context, s *Scope) error

	// Trigger handles an external stimulus addressed to the node, such as a
	// received message, an elapsed timer or a raised signal.
	Trigger(ctx context.Context, s *Scope) error
}

// Deactivator is an optional interface for behaviors that perform cleanup
// when their instance is deactivated, such as removing persisted timers or
// abandoning the nodes of a sub-process.
//
// The worker performs the state transition itself; the behavior only
// contributes additional operations to the unit-of-work.
type Deactivator interface {
	Deactivate(ctx context.Context, s *Scope) error
}

// WinningReceiver is an optional interface for behaviors that take part in
// the race arbitrated by an event-based gateway.
type WinningReceiver interface {
	// Winning handles permission to proceed after winning the race.
	Winning(ctx context.Context, s *Scope) error
}

// LoopReceiver is an optional interface for behaviors wrapped in a loop.
type LoopReceiver interface {
	// LoopContinue handles the completion of one iteration of the inner
	// action.
	LoopContinue(ctx context.Context, s *Scope) error

	// LoopEnd handles the completion of the loop as a whole.
	LoopEnd(ctx context.Context, s *Scope) error
}
