package utils

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// MapOrdered runs fn over items concurrently, at most limit at a time, and
// returns the results in input order. The first error cancels the rest.
// A limit below 1 means no limit.
func MapOrdered[T, R any](ctx context.Context, items []T, limit int, fn func(ctx context.Context, i int, item T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	results := make([]R, len(items))
	for i, item := range items {
		g.Go(func() error {
			r, err := fn(ctx, i, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
