package qsapi

import "context"

// Caller executes a single QuickSight control-plane operation. The pipelines
// depend only on this surface, so tests can substitute an in-memory fake.
type Caller interface {
	Call(ctx context.Context, op Op, params Document) (Document, error)
}

// CallerFunc adapts a plain function to the Caller interface.
type CallerFunc func(ctx context.Context, op Op, params Document) (Document, error)

// Call invokes the function.
func (f CallerFunc) Call(ctx context.Context, op Op, params Document) (Document, error) {
	return f(ctx, op, params)
}
