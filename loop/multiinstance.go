package loop

import (
	"context"

	"github.com/fxamacker/cbor/v2"
	"github.com/millrace/weir/definition"
	"github.com/millrace/weir/message"
	"github.com/millrace/weir/node"
	"github.com/millrace/weir/persistence"
)

// MultiInstance is the strategy of a multi-instance loop: one invocation of
// the inner action per element of a collection, sequentially or in parallel,
// with an optional completion condition that ends the loop early.
//
// If both a cardinality and an input collection are modeled, the cardinality
// wins; elements beyond the collection's size are invoked with an empty
// payload.
type MultiInstance struct {
	// Spec is the modeled loop.
	Spec *definition.LoopSpec
}

// Begin enters the loop, fanning out the first (sequential) or every
// (parallel) invocation.
func (l *MultiInstance) Begin(ctx context.Context, s *node.Scope, a Action) error {
	done, err := l.completed(ctx, s)
	if err != nil {
		return err
	}

	elements, err := l.collection(ctx, s)
	if err != nil {
		return err
	}

	n := l.cardinality(elements)

	s.Instance.LoopCount = 0
	s.Instance.AwaitedReplies = 0
	s.Save()

	if done || n == 0 {
		s.PostSelf(message.LoopEnd, nil)
		return nil
	}

	if l.Spec.Sequential {
		s.Instance.AwaitedReplies = 1

		return begin(ctx, s, a, element(elements, 0))
	}

	s.Instance.AwaitedReplies = n

	for i := 0; i < n; i++ {
		if err := begin(ctx, s, a, element(elements, i)); err != nil {
			return err
		}
	}

	return nil
}

// Iterate accumulates one reply and decides whether to invoke the next
// element or end the loop.
func (l *MultiInstance) Iterate(
	ctx context.Context,
	s *node.Scope,
	a Action,
	reply []byte,
) error {
	if err := l.accumulate(ctx, s, reply); err != nil {
		return err
	}

	s.Instance.LoopCount++
	s.Instance.AwaitedReplies--
	s.Save()

	done, err := l.completed(ctx, s)
	if err != nil {
		return err
	}

	elements, err := l.collection(ctx, s)
	if err != nil {
		return err
	}

	n := l.cardinality(elements)

	if l.Spec.Sequential {
		if done || s.Instance.LoopCount >= n {
			s.PostSelf(message.LoopEnd, nil)
			return nil
		}

		s.Instance.AwaitedReplies = 1

		return begin(ctx, s, a, element(elements, s.Instance.LoopCount))
	}

	if done || s.Instance.AwaitedReplies <= 0 {
		s.PostSelf(message.LoopEnd, nil)
	}

	return nil
}

// completed evaluates the loop's completion condition.
func (l *MultiInstance) completed(ctx context.Context, s *node.Scope) (bool, error) {
	if l.Spec.Completion == nil {
		return false, nil
	}

	return l.Spec.Completion.Eval(ctx, s)
}

// cardinality returns the number of invocations the loop fans out.
func (l *MultiInstance) cardinality(elements [][]byte) int {
	if l.Spec.Cardinality > 0 {
		return l.Spec.Cardinality
	}

	return len(elements)
}

// collection loads the loop's input collection, if one is modeled.
func (l *MultiInstance) collection(
	ctx context.Context,
	s *node.Scope,
) ([][]byte, error) {
	if l.Spec.CollectionID == "" {
		return nil, nil
	}

	content, err := s.LoadDataObject(ctx, l.Spec.CollectionID)
	if err != nil {
		if err == persistence.ErrDataObjectNotFound {
			return nil, nil
		}

		return nil, err
	}

	var elements [][]byte
	if err := cbor.Unmarshal(content, &elements); err != nil {
		return nil, err
	}

	return elements, nil
}

// accumulate appends one reply to the loop's output collection, if one is
// modeled.
func (l *MultiInstance) accumulate(
	ctx context.Context,
	s *node.Scope,
	reply []byte,
) error {
	if l.Spec.OutputID == "" {
		return nil
	}

	var replies [][]byte

	content, err := s.LoadDataObject(ctx, l.Spec.OutputID)
	if err != nil {
		if err != persistence.ErrDataObjectNotFound {
			return err
		}
	} else if err := cbor.Unmarshal(content, &replies); err != nil {
		return err
	}

	replies = append(replies, reply)

	content, err = cbor.Marshal(replies)
	if err != nil {
		return err
	}

	s.SaveDataObject(l.Spec.OutputID, content)

	return nil
}

// element returns the i'th element of the collection, or nil beyond its end.
func element(elements [][]byte, i int) []byte {
	if i < len(elements) {
		return elements[i]
	}

	return nil
}
