package eventdef

import (
	"context"

	"github.com/millrace/weir/commit"
	"github.com/millrace/weir/node"
)

// Empty is the strategy of a node with no modeled event semantics. Every
// operation commits success immediately.
type Empty struct{}

// Activate does nothing.
func (Empty) Activate(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// Deactivate does nothing.
func (Empty) Deactivate(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}

// Trigger does nothing.
func (Empty) Trigger(context.Context, *node.Scope) (*commit.Commit, error) {
	return commit.Resolved(nil), nil
}
