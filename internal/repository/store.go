package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrNoTransaction is returned by Commit/Rollback when the context does not
// carry a transaction started by BeginTransaction.
var ErrNoTransaction = errors.New("no transaction in context")

type txKey struct{}

// querier is satisfied by both *sql.DB and *sql.Tx, so a repository method
// runs the same statement inside or outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store owns the database handle shared by the repositories and starts the
// transactions the booking coordinator groups its writes into.  The open
// *sql.Tx travels in the context; every repository call made with that
// context joins it.
type Store struct {
	db *sql.DB
}

// NewStore wraps an open database handle.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

// DB exposes the underlying handle for health checks.
func (s *Store) DB() *sql.DB { return s.db }

// BeginTransaction starts a transaction and returns a context carrying it.
func (s *Store) BeginTransaction(ctx context.Context) (context.Context, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ctx, err
	}
	return context.WithValue(ctx, txKey{}, tx), nil
}

// CommitTransaction commits the transaction carried by ctx.
func (s *Store) CommitTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	if !ok {
		return ErrNoTransaction
	}
	return tx.Commit()
}

// RollbackTransaction aborts the transaction carried by ctx.  Rolling back
// a transaction that already finished is not an error.
func (s *Store) RollbackTransaction(ctx context.Context) error {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	if !ok {
		return ErrNoTransaction
	}
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rollback: %w", err)
	}
	return nil
}

// conn returns the transaction in ctx when there is one, else the pool.
func (s *Store) conn(ctx context.Context) querier {
	if tx, ok := ctx.Value(txKey{}).(*sql.Tx); ok {
		return tx
	}
	return s.db
}
