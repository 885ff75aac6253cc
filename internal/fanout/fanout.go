// Package fanout runs one operation across many inputs with a cap on the
// number of operations in flight.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultLimit caps in-flight operations when the caller passes no limit.
const DefaultLimit = 64

// Result pairs an input with the outcome of its operation. Exactly one
// Result exists per input.
type Result[I, O any] struct {
	Input  I
	Output O
	Err    error
}

// Map runs fn over items with at most limit invocations in flight and
// returns one Result per item, positioned by input index. Completion order
// across items is unspecified. A failed item is reported once and never
// resubmitted. When ctx is cancelled, unstarted items complete immediately
// with the context error and in-flight ones drain on their own.
func Map[I, O any](ctx context.Context, items []I, limit int, fn func(context.Context, I) (O, error)) []Result[I, O] {
	if limit < 1 {
		limit = DefaultLimit
	}
	results := make([]Result[I, O], len(items))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result[I, O]{Input: item, Err: err}
				return nil
			}
			out, err := fn(gctx, item)
			results[i] = Result[I, O]{Input: item, Output: out, Err: err}
			return nil
		})
	}
	// Workers report per-item errors through results, never through the
	// group, so Wait only synchronizes.
	_ = g.Wait()
	return results
}
