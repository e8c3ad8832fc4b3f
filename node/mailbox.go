package node

import (
	"context"
	"sync"

	"github.com/millrace/weir/envelope"
)

// mailbox is an unbounded FIFO queue of envelopes.
//
// Posting never blocks; the sender must not be stalled by a slow receiver.
type mailbox struct {
	m         sync.Mutex
	envelopes []*envelope.Envelope
	wake      chan struct{}
}

// Post adds an envelope to the back of the mailbox.
func (mb *mailbox) Post(env *envelope.Envelope) {
	mb.m.Lock()
	mb.envelopes = append(mb.envelopes, env)
	w := mb.wake
	mb.m.Unlock()

	if w != nil {
		select {
		case w <- struct{}{}:
		default:
		}
	}
}

// Pop removes the envelope at the front of the mailbox.
//
// It blocks until an envelope is available, or ctx is canceled.
func (mb *mailbox) Pop(ctx context.Context) (*envelope.Envelope, error) {
	for {
		mb.m.Lock()

		if len(mb.envelopes) != 0 {
			env := mb.envelopes[0]
			mb.envelopes[0] = nil
			mb.envelopes = mb.envelopes[1:]
			mb.m.Unlock()

			return env, nil
		}

		if mb.wake == nil {
			mb.wake = make(chan struct{}, 1)
		}

		w := mb.wake
		mb.m.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-w:
		}
	}
}
