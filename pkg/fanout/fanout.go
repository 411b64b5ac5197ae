// Package fanout bounds how many asynchronous operations run over a slice
// at once while keeping results in input order.
package fanout

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every element of items with at most concurrency calls
// in flight, returning results in input order regardless of completion
// order. Each output slot i holds the result of fn(ctx, items[i], i).
//
// concurrency is clamped to [1, len(items)]. If fn returns an error the
// group context is canceled, workers stop claiming new indices, and Map
// returns the first error. Callers that want partial results should
// swallow errors inside fn and return a sentinel instead.
func Map[T, R any](ctx context.Context, items []T, concurrency int, fn func(ctx context.Context, item T, idx int) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}
	if concurrency < 1 {
		concurrency = 1
	}
	if concurrency > len(items) {
		concurrency = len(items)
	}

	out := make([]R, len(items))
	var cursor atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < concurrency; w++ {
		g.Go(func() error {
			for {
				idx := int(cursor.Add(1)) - 1
				if idx >= len(items) {
					return nil
				}
				if err := gctx.Err(); err != nil {
					return err
				}
				r, err := fn(gctx, items[idx], idx)
				if err != nil {
					return err
				}
				out[idx] = r
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
