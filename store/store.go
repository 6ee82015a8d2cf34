/*
Package store runs statements rendered by "github.com/sqlorm/sqlorm" against a
SQL database. A `Table` pairs a table schema with an `Executor` and exposes
the usual helpers: create and repair the table, read, write, batch writes.

Every call renders its statement with a fresh builder, so a `Table` is safe
for concurrent use as long as its executor is.
*/
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/sqlorm/sqlorm"

	_ "modernc.org/sqlite"
)

// Name of the database/sql driver registered by "modernc.org/sqlite".
const DriverName = `sqlite`

// Default number of batch statements executed concurrently.
const DefaultWorkers = 4

var (
	ErrNotTransactional = errors.New(`executor doesn't support transactions`)
	ErrEmptyStatement   = errors.New(`empty statement`)
)

/*
Executes statements. Satisfied by `*sql.DB`, `*sql.Conn` and `*sql.Tx`.
*/
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Implemented by executors that can start transactions, such as `*sql.DB`.
type Beginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

/*
Opens a SQLite database at the given path or DSN, such as `app.db` or
`file::memory:`, and verifies the connection. The pool is limited to one
connection: SQLite allows a single writer, and in-memory databases are
per-connection.
*/
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open(DriverName, path)
	if err != nil {
		return nil, fmt.Errorf("opening %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connecting to %q: %w", path, err)
	}
	return db, nil
}

/*
Called by `(*Table).Init` when the stored schema version is below
`Schema.Version`, before the new version is stored.
*/
type UpgradeFunc func(ctx context.Context, tab *Table, from, to int) error

// Restricts a select, update or delete. Must return the builder it was given.
type Scope func(*sqlorm.Builder) *sqlorm.Builder

/*
Table helper. Construct via `NewTable`. Read-only after construction; `With`
derives a copy bound to another executor.
*/
type Table struct {
	Schema

	exec    Executor
	opts    []sqlorm.Option
	log     *zap.Logger
	workers int
	upgrade UpgradeFunc
}

// Configures a `Table` at construction.
type Option func(*Table)

// Options passed to every builder created by the table.
func WithBuilder(opts ...sqlorm.Option) Option {
	return func(self *Table) { self.opts = append(self.opts, opts...) }
}

// Sets the logger. Defaults to `zap.L()`.
func WithLogger(log *zap.Logger) Option {
	return func(self *Table) {
		if log != nil {
			self.log = log
		}
	}
}

// Sets how many batch statements run concurrently. Non-positive means 1.
func WithWorkers(count int) Option {
	return func(self *Table) {
		if count < 1 {
			count = 1
		}
		self.workers = count
	}
}

// Sets the hook called by `(*Table).Init` on version upgrades.
func WithUpgrade(fun UpgradeFunc) Option {
	return func(self *Table) { self.upgrade = fun }
}

// Creates a table helper. An empty `Schema.Key` means `id`.
func NewTable(exec Executor, schema Schema, opts ...Option) *Table {
	if schema.Key == `` {
		schema.Key = DefaultKey
	}

	self := &Table{
		Schema:  schema,
		exec:    exec,
		log:     zap.L(),
		workers: DefaultWorkers,
	}
	for _, opt := range opts {
		opt(self)
	}
	return self
}

// Returns a copy of the table bound to the given executor, typically a `*sql.Tx`.
func (self *Table) With(exec Executor) *Table {
	out := *self
	out.exec = exec
	return &out
}

/*
Runs `fun` in a transaction, with a copy of the table bound to it. Commits if
`fun` returns nil, otherwise rolls back. A panic in `fun` also rolls back and
is then re-raised. Requires the executor to implement
`Beginner`.
*/
func (self *Table) Tx(ctx context.Context, fun func(*Table) error) (err error) {
	db, ok := self.exec.(Beginner)
	if !ok {
		return ErrNotTransactional
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if val := recover(); val != nil {
			self.rollback(tx)
			panic(val)
		}
		if err != nil {
			self.rollback(tx)
			return
		}
		if err = tx.Commit(); err != nil {
			err = fmt.Errorf("committing transaction: %w", err)
		}
	}()

	return fun(self.With(tx))
}

func (self *Table) rollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil {
		self.log.Error(`rollback failed`, zap.String(`table`, self.Name), zap.Error(err))
	}
}

// Fresh builder for one statement.
func (self *Table) builder() *sqlorm.Builder {
	opts := make([]sqlorm.Option, 0, len(self.opts)+1)
	opts = append(opts, self.opts...)
	opts = append(opts, sqlorm.WithLogger(self.log))
	return sqlorm.New(self.Name, opts...)
}

func (self *Table) execute(ctx context.Context, stmt sqlorm.Statement) (sql.Result, error) {
	if err := self.prepare(stmt); err != nil {
		return nil, err
	}
	return self.exec.ExecContext(ctx, stmt.Text, stmt.Args...)
}

func (self *Table) query(ctx context.Context, stmt sqlorm.Statement) ([]sqlorm.Row, error) {
	if err := self.prepare(stmt); err != nil {
		return nil, err
	}

	rows, err := self.exec.QueryContext(ctx, stmt.Text, stmt.Args...)
	if err != nil {
		return nil, err
	}
	return scanRows(rows)
}

func (self *Table) prepare(stmt sqlorm.Statement) error {
	if stmt.IsEmpty() {
		return ErrEmptyStatement
	}
	if err := stmt.Check(); err != nil {
		return err
	}
	self.log.Debug(`executing statement`,
		zap.String(`table`, self.Name),
		zap.String(`sql`, stmt.Text),
		zap.Any(`args`, stmt.Args),
	)
	return nil
}
