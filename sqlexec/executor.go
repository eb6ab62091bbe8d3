// Package sqlexec applies schema descriptors to SQL databases through
// database/sql. Every descriptor runs as one transaction.
package sqlexec

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/tinywasm/schema"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

// Executor implements schema.Executor on a *sql.DB.
type Executor struct {
	db      *sql.DB
	dialect Dialect
	log     *zap.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the executor logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Executor) {
		if log != nil {
			e.log = log
		}
	}
}

// New wraps db. The caller keeps ownership of db until Close.
func New(db *sql.DB, d Dialect, opts ...Option) *Executor {
	e := &Executor{
		db:      db,
		dialect: d,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Open opens a database for driver ("sqlite" or "pgx") and wraps it.
func Open(driver, dsn string, opts ...Option) (*Executor, error) {
	var d Dialect
	switch driver {
	case "sqlite":
		d = DialectConfigFor(DialectSQLite)
	case "pgx", "postgres":
		driver = "pgx"
		d = DialectConfigFor(DialectPostgres)
	default:
		return nil, fmt.Errorf("unknown driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == "sqlite" {
		// An in-memory database lives on one connection.
		db.SetMaxOpenConns(1)
	}
	return New(db, d, opts...), nil
}

// Dialect returns the dialect statements are generated for.
func (e *Executor) Dialect() Dialect {
	return e.dialect
}

// Close closes the underlying database.
func (e *Executor) Close() error {
	return e.db.Close()
}

// Execute translates s and runs the statements in one transaction.
func (e *Executor) Execute(ctx context.Context, s *schema.Schema) error {
	stmts, err := Statements(e.dialect, s)
	if err != nil {
		return err
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}

	if err := e.run(ctx, tx, s, stmts); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			e.log.Warn("rollback failed", zap.Error(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (e *Executor) run(ctx context.Context, tx *sql.Tx, s *schema.Schema, stmts []string) error {
	for _, stmt := range stmts {
		e.log.Debug("exec ddl", zap.String("table", s.Qualified()), zap.String("sql", stmt))
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return classify(stmt, err)
		}
	}
	return nil
}

// BeginTx starts a transaction shared by every Execute on the returned
// executor.
func (e *Executor) BeginTx(ctx context.Context) (schema.TxBoundExecutor, error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin: %w", err)
	}
	return &txExecutor{parent: e, tx: tx}, nil
}

// txExecutor runs descriptors inside an open transaction.
type txExecutor struct {
	parent *Executor
	tx     *sql.Tx
}

func (t *txExecutor) Execute(ctx context.Context, s *schema.Schema) error {
	stmts, err := Statements(t.parent.dialect, s)
	if err != nil {
		return err
	}
	return t.parent.run(ctx, t.tx, s, stmts)
}

func (t *txExecutor) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (t *txExecutor) Rollback() error {
	return t.tx.Rollback()
}

// PostgreSQL SQLSTATE codes mapped onto schema sentinels.
var pgCodes = map[string]error{
	"42P07": schema.ErrExists,      // duplicate_table
	"42701": schema.ErrExists,      // duplicate_column
	"42710": schema.ErrExists,      // duplicate_object
	"42P01": schema.ErrNotFound,    // undefined_table
	"42703": schema.ErrNotFound,    // undefined_column
	"42704": schema.ErrNotFound,    // undefined_object
	"0A000": schema.ErrUnsupported, // feature_not_supported
}

// classify wraps err with the schema sentinel it corresponds to, keeping
// the driver error in the chain.
func classify(stmt string, err error) error {
	var sentinel error

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		sentinel = pgCodes[pgErr.Code]
	} else {
		msg := strings.ToLower(err.Error())
		switch {
		case strings.Contains(msg, "already exists"), strings.Contains(msg, "duplicate column"):
			sentinel = schema.ErrExists
		case strings.Contains(msg, "no such table"), strings.Contains(msg, "no such column"),
			strings.Contains(msg, "no such index"):
			sentinel = schema.ErrNotFound
		}
	}

	if sentinel == nil {
		return fmt.Errorf("exec %q: %w", stmt, err)
	}
	return fmt.Errorf("exec %q: %w: %w", stmt, sentinel, err)
}
