// Package semaphore bounds the number of envelopes the engine handles
// concurrently.
package semaphore

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// Semaphore is an engine-wide bound on concurrent envelope handling.
//
// The zero value imposes no bound.
type Semaphore struct {
	limit   int
	weights *semaphore.Weighted
}

// New returns a semaphore that allows up to n envelopes to be handled
// concurrently.
func New(n int) Semaphore {
	return Semaphore{
		limit:   n,
		weights: semaphore.NewWeighted(int64(n)),
	}
}

// Limit returns the maximum number of envelopes that may be handled
// concurrently, or 0 if there is no bound.
func (s *Semaphore) Limit() int {
	if s.weights == nil {
		return 0
	}

	return s.limit
}

// Acquire blocks until the caller may handle an envelope, or until ctx is
// canceled.
func (s *Semaphore) Acquire(ctx context.Context) error {
	if s.weights == nil {
		return nil
	}

	return s.weights.Acquire(ctx, 1)
}

// Release signals that handling of an envelope has finished. It must be
// called exactly once per successful Acquire.
func (s *Semaphore) Release() {
	if s.weights != nil {
		s.weights.Release(1)
	}
}
