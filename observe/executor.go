package observe

import (
	"context"
	"io"

	"github.com/tinywasm/schema"
)

// ExecuteFunc runs s on next with some instrumentation around it.
type ExecuteFunc func(ctx context.Context, next schema.Executor, s *schema.Schema) error

// Executor is an instrumented executor. It keeps the transactions and Close
// of the executor it wraps, so DB.Tx and DB.Close reach through it.
type Executor struct {
	next    schema.Executor
	execute ExecuteFunc
}

// Wrap instruments next with execute.
func Wrap(next schema.Executor, execute ExecuteFunc) *Executor {
	return &Executor{next: next, execute: execute}
}

// Unwrap returns the wrapped executor.
func (e *Executor) Unwrap() schema.Executor {
	return e.next
}

func (e *Executor) Execute(ctx context.Context, s *schema.Schema) error {
	return e.execute(ctx, e.next, s)
}

// BeginTx starts a transaction on the wrapped executor. Changes executed in
// it are instrumented the same way.
func (e *Executor) BeginTx(ctx context.Context) (schema.TxBoundExecutor, error) {
	txExec, ok := e.next.(schema.TxExecutor)
	if !ok {
		return nil, schema.ErrNoTxSupport
	}
	bound, err := txExec.BeginTx(ctx)
	if err != nil {
		return nil, err
	}
	return &boundExecutor{bound: bound, execute: e.execute}, nil
}

// Close closes the wrapped executor if it supports it.
func (e *Executor) Close() error {
	if c, ok := e.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

type boundExecutor struct {
	bound   schema.TxBoundExecutor
	execute ExecuteFunc
}

func (b *boundExecutor) Execute(ctx context.Context, s *schema.Schema) error {
	return b.execute(ctx, b.bound, s)
}

func (b *boundExecutor) Commit() error   { return b.bound.Commit() }
func (b *boundExecutor) Rollback() error { return b.bound.Rollback() }
