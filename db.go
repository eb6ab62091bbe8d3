package schema

import (
	"io"

	"go.uber.org/zap"
)

// DB hands out schema builders bound to one Executor.
// Consumers instantiate it via New().
type DB struct {
	exec Executor
	log  *zap.Logger
}

// Option configures a DB.
type Option func(*DB)

// WithLogger sets the logger used for dispatch messages.
func WithLogger(log *zap.Logger) Option {
	return func(db *DB) {
		if log != nil {
			db.log = log
		}
	}
}

// New creates a new DB instance. With a nil exec every terminal method
// resolves to ErrNoExecutor.
func New(exec Executor, opts ...Option) *DB {
	db := &DB{
		exec: exec,
		log:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(db)
	}
	return db
}

// Schema returns a Builder for name in the default space.
func (db *DB) Schema(name string) *Builder {
	return db.SchemaIn(name, "")
}

// SchemaIn returns a Builder for name in space.
func (db *DB) SchemaIn(name, space string) *Builder {
	return &Builder{
		db:     db,
		schema: NewSchema(name, space),
	}
}

// Close closes the underlying executor if it supports it.
func (db *DB) Close() error {
	if c, ok := db.exec.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// RawExecutor returns the underlying executor instance.
func (db *DB) RawExecutor() Executor {
	return db.exec
}
