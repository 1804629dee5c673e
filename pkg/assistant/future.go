package assistant

import (
	"context"
	"errors"
	"sync"
)

// Future is a single-resolution container for a handler outcome. A handler
// that does its work on another goroutine returns a Future and settles it
// exactly once; the dispatcher blocks on it before serializing anything.
type Future struct {
	once sync.Once
	done chan struct{}
	err  error
}

// NewFuture returns an unresolved future.
func NewFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns an already-settled future, used to adapt synchronous
// handlers.
func Resolved(err error) *Future {
	f := NewFuture()
	f.settle(err)
	return f
}

// Resolve settles the future successfully. Later calls to Resolve or Reject
// are no-ops.
func (f *Future) Resolve() {
	f.settle(nil)
}

// Reject settles the future with a failure. A nil err is normalized so a
// rejection is never mistaken for success.
func (f *Future) Reject(err error) {
	if err == nil {
		err = errors.New("handler rejected without error")
	}
	f.settle(err)
}

func (f *Future) settle(err error) {
	f.once.Do(func() {
		f.err = err
		close(f.done)
	})
}

// Await blocks until the future settles or the context is cancelled by the
// transport. There is no internal timeout.
func (f *Future) Await(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
