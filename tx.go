package schema

import "context"

// TxBoundExecutor represents an executor bound to a transaction.
type TxBoundExecutor interface {
	Executor
	Commit() error
	Rollback() error
}

// TxExecutor represents an executor that can group changes in a transaction.
type TxExecutor interface {
	Executor
	BeginTx(ctx context.Context) (TxBoundExecutor, error)
}

// Tx runs fn with a DB whose builders submit into one transaction. The
// transaction commits when fn returns nil and rolls back otherwise. fn must
// wait on every Future it creates before returning.
func (db *DB) Tx(ctx context.Context, fn func(tx *DB) error) error {
	txExec, ok := db.exec.(TxExecutor)
	if !ok {
		return ErrNoTxSupport
	}

	bound, err := txExec.BeginTx(ctx)
	if err != nil {
		return err
	}

	txDB := &DB{
		exec: bound,
		log:  db.log,
	}

	if err := fn(txDB); err != nil {
		bound.Rollback()
		return err
	}

	return bound.Commit()
}
