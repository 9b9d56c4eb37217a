package resilience

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// Group deduplicates concurrent calls for the same key and returns typed
// results. The shared call runs on a context detached from any single
// caller, so one waiter giving up does not fail the others.
type Group[T any] struct {
	group singleflight.Group
}

// Do runs fn once per key among concurrent callers. shared reports whether
// the result was produced for another caller too.
func (g *Group[T]) Do(ctx context.Context, key string, fn func(context.Context) (T, error)) (T, bool, error) {
	detached := context.WithoutCancel(ctx)
	ch := g.group.DoChan(key, func() (any, error) {
		return fn(detached)
	})

	select {
	case <-ctx.Done():
		var zero T
		return zero, false, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Shared, res.Err
		}
		value, _ := res.Val.(T)
		return value, res.Shared, nil
	}
}

// Forget drops an in-flight key so the next call starts fresh.
func (g *Group[T]) Forget(key string) {
	g.group.Forget(key)
}
