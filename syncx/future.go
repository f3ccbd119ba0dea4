package syncx

import (
	"context"
	"fmt"
	"sync"
)

// FutureErr is a value and error that are resolved asynchronously at a later time.
// Once resolved, the result is cached for all calls to Await.
type FutureErr[T any] interface {
	// ResolveErr sets the result of the [FutureErr] so it can be consumed.
	// Only the first call to ResolveErr will set the result. Subsequent calls do nothing.
	ResolveErr(T, error)
	// AwaitErr blocks until the result is made available with [FutureErr.ResolveErr], or until the context is done.
	// If the context is done first, then the type's zero value is returned along with the context's error.
	AwaitErr(ctx context.Context) (T, error)
	// Done returns a channel that is closed once the result is available.
	Done() <-chan struct{}
}

func NewFutureErr[T any]() FutureErr[T] {
	return &future[T]{
		done: make(chan struct{}),
	}
}

// Go runs fn in a new goroutine and returns a [FutureErr] for its result.
// A panic in fn is recovered and resolved as an error.
func Go[T any](fn func() (T, error)) FutureErr[T] {
	f := NewFutureErr[T]()
	go func() {
		defer func() {
			if r := recover(); r != nil {
				var zero T
				f.ResolveErr(zero, fmt.Errorf("recovered panic in future: %v", r))
			}
		}()
		f.ResolveErr(fn())
	}()
	return f
}

// Resolved returns a [FutureErr] that already holds the given result.
func Resolved[T any](val T, err error) FutureErr[T] {
	f := NewFutureErr[T]()
	f.ResolveErr(val, err)
	return f
}

type future[T any] struct {
	resolve sync.Once
	done    chan struct{}
	val     T
	err     error
}

func (f *future[T]) ResolveErr(val T, err error) {
	f.resolve.Do(func() {
		f.val = val
		f.err = err
		close(f.done)
	})
}

func (f *future[T]) Done() <-chan struct{} {
	return f.done
}

func (f *future[T]) AwaitErr(ctx context.Context) (T, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	select {
	case <-f.done:
		return f.val, f.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
