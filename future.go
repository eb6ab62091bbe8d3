package schema

import "context"

// Future is the deferred outcome of one submitted Schema.
// It resolves exactly once; Wait may be called from any goroutine.
type Future struct {
	done chan struct{}
	err  error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

// Resolved returns a Future that has already completed with err.
func Resolved(err error) *Future {
	f := newFuture()
	f.resolve(err)
	return f
}

func (f *Future) resolve(err error) {
	f.err = err
	close(f.done)
}

// Done is closed once the outcome is known.
func (f *Future) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the executor finishes and returns its error.
func (f *Future) Wait() error {
	<-f.done
	return f.err
}

// WaitContext is Wait bounded by ctx. It stops waiting, not the executor.
func (f *Future) WaitContext(ctx context.Context) error {
	select {
	case <-f.done:
		return f.err
	case <-ctx.Done():
		return ctx.Err()
	}
}
