package schema

import "errors"

// ErrExists is returned when a create targets something that already exists.
var ErrExists = errors.New("already exists")

// ErrNotFound is returned when an update or delete targets something missing.
var ErrNotFound = errors.New("not found")

// ErrUnsupported is returned when a backend cannot express a change.
var ErrUnsupported = errors.New("unsupported by backend")

// ErrValidation is returned by Check.
var ErrValidation = errors.New("validation error")

// ErrEmptyName is returned by Check when the Schema has no name.
var ErrEmptyName = errors.New("empty schema name")

// ErrNoTxSupport is returned by DB.Tx when the executor has no transactions.
var ErrNoTxSupport = errors.New("executor does not support transactions")

// ErrNoExecutor is returned when a DB was created without an Executor.
var ErrNoExecutor = errors.New("no executor")
