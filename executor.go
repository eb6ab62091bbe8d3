package schema

import "context"

// Executor applies a finished Schema to a backend.
// Implementations should apply every list of the Schema as one change and
// report failures with the sentinel errors of this package where they fit.
type Executor interface {
	Execute(ctx context.Context, s *Schema) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, s *Schema) error

func (f ExecutorFunc) Execute(ctx context.Context, s *Schema) error {
	return f(ctx, s)
}
