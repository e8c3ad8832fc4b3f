package definition

import "context"

// ExpressionEnv is the evaluation context shared by every expression
// evaluated while handling a single message.
//
// It exposes the data objects of the process instance under evaluation.
type ExpressionEnv interface {
	// InstanceID returns the ID of the process instance under evaluation.
	InstanceID() string

	// LoadDataObject loads the content of a data object scoped to the process
	// instance under evaluation.
	LoadDataObject(ctx context.Context, id string) ([]byte, error)
}

// Expression is a boolean expression over process data, used as a sequence
// flow guard, a loop condition or a multi-instance completion condition.
type Expression interface {
	Eval(ctx context.Context, env ExpressionEnv) (bool, error)
}

// ExpressionFunc is an adaptor that allows ordinary functions to be used as
// expressions.
type ExpressionFunc func(ctx context.Context, env ExpressionEnv) (bool, error)

// Eval invokes fn.
func (fn ExpressionFunc) Eval(ctx context.Context, env ExpressionEnv) (bool, error) {
	return fn(ctx, env)
}

// Bool returns an expression with a fixed result.
func Bool(v bool) Expression {
	return ExpressionFunc(
		func(context.Context, ExpressionEnv) (bool, error) {
			return v, nil
		},
	)
}
