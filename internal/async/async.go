// Package async joins independent context-aware computations.
//
// Each branch of a join runs in its own goroutine under an errgroup. The combining function is
// applied only when every branch succeeded; the first failing branch cancels the others and its
// error is returned unchanged, so sentinel errors such as a not-found signal survive the join.
package async

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Task is a unit of work that produces a value or an error.
type Task[T any] func(ctx context.Context) (T, error)

// Just returns a Task that yields v without doing any work.
func Just[T any](v T) Task[T] {
	return func(context.Context) (T, error) {
		return v, nil
	}
}

// Pair holds the results of a two-way join in argument order.
type Pair[A, B any] struct {
	First  A
	Second B
}

// Zip runs a and b concurrently and waits for both.
func Zip[A, B any](ctx context.Context, a Task[A], b Task[B]) (Pair[A, B], error) {
	var out Pair[A, B]

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		v, err := a(gctx)
		out.First = v
		return err
	})
	g.Go(func() error {
		v, err := b(gctx)
		out.Second = v
		return err
	})

	if err := g.Wait(); err != nil {
		return Pair[A, B]{}, err
	}
	return out, nil
}

// ZipWith runs a and b concurrently and combines their results once both succeeded.
func ZipWith[A, B, R any](ctx context.Context, a Task[A], b Task[B], combine func(A, B) R) (R, error) {
	p, err := Zip(ctx, a, b)
	if err != nil {
		var zero R
		return zero, err
	}
	return combine(p.First, p.Second), nil
}

// Defer turns a join into a Task so that it can take part in an enclosing join.
func Defer[A, B, R any](a Task[A], b Task[B], combine func(A, B) R) Task[R] {
	return func(ctx context.Context) (R, error) {
		return ZipWith(ctx, a, b, combine)
	}
}
