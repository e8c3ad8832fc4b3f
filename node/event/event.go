// Package event implements the behaviors of event nodes: start, end,
// intermediate catch/throw, and boundary events.
package event

import (
	"context"
	"time"

	"github.com/dogmatiq/linger"
	"github.com/millrace/weir/commit"
)

// DefaultTimeout is the default maximum time an event node waits for its
// strategy's commit acknowledgment.
const DefaultTimeout = 5 * time.Second

// await waits for a strategy's commit acknowledgment.
func await(
	ctx context.Context,
	c *commit.Commit,
	timeout time.Duration,
) error {
	ctx, cancel := linger.ContextWithTimeout(ctx, timeout, DefaultTimeout)
	defer cancel()

	return c.Wait(ctx)
}
