package async

import (
	"context"
	"errors"
	"sync"
	"time"
)

var (
	// ErrTimeout is returned by AwaitTimeout when the work is still running.
	ErrTimeout = errors.New("async: timed out waiting for result")

	// ErrNoFutures is returned by Any when called without futures.
	ErrNoFutures = errors.New("async: no futures given")
)

// Future is the pending error result of work running on its own goroutine.
type Future struct {
	err  error
	done chan struct{}
}

// Go runs fn on a new goroutine. A context that is already done short-circuits
// fn and becomes the result.
func Go(ctx context.Context, fn func(context.Context) error) *Future {
	f := &Future{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		if err := ctx.Err(); err != nil {
			f.err = err
			return
		}
		f.err = fn(ctx)
	}()

	return f
}

// Done is closed once the work has finished.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Await blocks until the work finishes and returns its error.
func (f *Future) Await() error {
	<-f.done
	return f.err
}

// AwaitContext is like Await but gives up when ctx is done.
// The work itself keeps running.
func (f *Future) AwaitContext(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// AwaitTimeout is like Await but returns ErrTimeout after d.
func (f *Future) AwaitTimeout(d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-f.done:
		return f.err
	case <-t.C:
		return ErrTimeout
	}
}

// IsComplete reports whether the work has finished, without blocking.
func (f *Future) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// All waits for every future and joins their errors.
func All(futures ...*Future) error {
	errs := make([]error, 0, len(futures))
	for _, f := range futures {
		errs = append(errs, f.Await())
	}
	return errors.Join(errs...)
}

// Any waits for the first future to finish and returns its index and error.
func Any(futures ...*Future) (int, error) {
	if len(futures) == 0 {
		return -1, ErrNoFutures
	}

	type result struct {
		index int
		err   error
	}

	var once sync.Once
	first := make(chan result, 1)
	for i, f := range futures {
		go func() {
			err := f.Await()
			once.Do(func() { first <- result{index: i, err: err} })
		}()
	}

	r := <-first
	return r.index, r.err
}
