// Package deactivate implements the fan-out protocol that cancels a set of
// flow nodes: the losing branches of a race, a boundary-interrupted activity,
// or a Terminate event's "everything else".
package deactivate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dogmatiq/dodeca/logging"
	"github.com/dogmatiq/linger"
	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/envelope"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
	"go.uber.org/multierr"
)

// DefaultTimeout is the default maximum time the initiator of a fan-out
// waits for acknowledgments.
const DefaultTimeout = 5 * time.Second

// Coordinator cancels sets of flow nodes on behalf of an initiating node.
//
// Cancellation is best-effort: a missing or failed acknowledgment is logged
// and the initiating operation proceeds anyway. It is advisory, not
// transactional.
type Coordinator struct {
	// Packer is used to pack the Deactivation messages.
	Packer *envelope.Packer

	// Exchange is used to deliver the Deactivation messages.
	Exchange *node.Exchange

	// Timeout is the maximum time to wait for acknowledgments per fan-out.
	// If it is zero, DefaultTimeout is used.
	Timeout time.Duration

	// Logger is the target for log messages about incomplete fan-outs.
	Logger logging.Logger
}

// DeactivateDeferred schedules a fan-out to the targets for after s's
// unit-of-work has been persisted and the initiating worker has released its
// concurrency slot. The acknowledgments the fan-out collects can only be
// produced once the target workers acquire slots of their own.
func (c *Coordinator) DeactivateDeferred(s *node.Scope, targets ...string) {
	if len(targets) == 0 {
		return
	}

	cause := s.Envelope
	sourceID := s.Node.ID

	s.Defer(func(ctx context.Context) error {
		c.Deactivate(ctx, cause, sourceID, targets...)
		return nil
	})
}

// Deactivate sends a Deactivation to every target node concurrently and
// waits for one acknowledgment per target.
//
// cause is the message being handled by the initiating node, and sourceID
// the initiating node's ID. The targets are deactivated for cause's process
// instance.
//
// It blocks until every acknowledgment arrives, the coordinator's timeout
// elapses, or ctx is canceled. It never returns an error; a fan-out that
// does not complete is logged and abandoned.
func (c *Coordinator) Deactivate(
	ctx context.Context,
	cause *envelope.Envelope,
	sourceID string,
	targets ...string,
) {
	if len(targets) == 0 {
		return
	}

	ctx, cancel := linger.ContextWithTimeout(ctx, c.Timeout, DefaultTimeout)
	defer cancel()

	type pending struct {
		nodeID string
		ack    *commit.Commit
	}

	acks := make([]pending, 0, len(targets))

	for _, t := range targets {
		env, ack := c.Packer.PackChildWithAck(
			cause,
			message.Deactivation,
			sourceID,
			t,
			nil,
		)

		// An unknown target resolves the acknowledgment with the routing
		// error, which is collected below like any other failure.
		c.Exchange.Post(env)

		acks = append(acks, pending{t, ack})
	}

	var (
		missing []string
		failed  error
	)

	for _, p := range acks {
		err := p.ack.Wait(ctx)

		switch {
		case err == nil:

		case errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, context.Canceled):
			missing = append(missing, p.nodeID)

		default:
			failed = multierr.Append(
				failed,
				fmt.Errorf("node %s: %w", p.nodeID, err),
			)
		}
	}

	if len(missing) != 0 {
		logging.Log(
			c.Logger,
			"deactivation fan-out from node %s timed out awaiting acknowledgment from: %s",
			sourceID,
			strings.Join(missing, ", "),
		)
	}

	if failed != nil {
		logging.Log(
			c.Logger,
			"deactivation fan-out from node %s failed for some targets: %s",
			sourceID,
			failed,
		)
	}
}
