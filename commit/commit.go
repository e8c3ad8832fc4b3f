// Package commit provides a single-resolution acknowledgment handle used to
// confirm that a delegated side effect has been initiated.
package commit

import (
	"context"
	"sync"
)

// Commit is a deferred acknowledgment of a delegated operation.
//
// It is resolved at most once. Resolving an already-resolved commit has no
// effect; the first resolution wins.
type Commit struct {
	once sync.Once
	done chan struct{}
	err  error
}

// New returns an unresolved commit.
func New() *Commit {
	return &Commit{
		done: make(chan struct{}),
	}
}

// Resolved returns a commit that has already been resolved with the given
// error.
//
// It is used by operations whose side effect completes synchronously.
func Resolved(err error) *Commit {
	c := New()
	c.Resolve(err)
	return c
}

// Resolve marks the operation as complete.
//
// err is nil if the side effect was initiated successfully. Only the first
// call has any effect.
func (c *Commit) Resolve(err error) {
	c.once.Do(func() {
		c.err = err
		close(c.done)
	})
}

// Done returns a channel that is closed when the commit is resolved.
func (c *Commit) Done() <-chan struct{} {
	return c.done
}

// Err returns the error the commit was resolved with.
//
// It panics if the commit has not been resolved.
func (c *Commit) Err() error {
	select {
	case <-c.done:
		return c.err
	default:
		panic("commit has not been resolved")
	}
}

// Wait blocks until the commit is resolved or ctx is canceled.
//
// It returns the resolution error if the commit was resolved, otherwise it
// returns the context error.
func (c *Commit) Wait(ctx context.Context) error {
	if c == nil {
		return nil
	}

	select {
	case <-c.done:
		return c.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
