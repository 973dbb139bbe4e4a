// Package store persists surveys, sessions and answers with sqlx.
package store

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
)

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUniqueViolation     = errors.New("unique violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
)

// Store runs its queries on a database handle or on a transaction.
type Store struct {
	db sqlx.ExtContext
}

func New(db sqlx.ExtContext) *Store {
	return &Store{db: db}
}

type txKey struct{}

// WithTx attaches the request transaction to ctx.
func WithTx(ctx context.Context, tx *sqlx.Tx) context.Context {
	return context.WithValue(ctx, txKey{}, tx)
}

func TxFrom(ctx context.Context) *sqlx.Tx {
	tx, _ := ctx.Value(txKey{}).(*sqlx.Tx)
	return tx
}

// FromContext returns a store bound to the transaction carried by ctx, or to
// db when there is none.
func FromContext(ctx context.Context, db *sqlx.DB) *Store {
	if tx := TxFrom(ctx); tx != nil {
		return New(tx)
	}
	return New(db)
}

// InTx runs fn in a transaction committed when fn returns nil.
func InTx(ctx context.Context, db *sqlx.DB, fn func(*Store) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin_tx")
	}
	defer tx.Rollback()

	if err := fn(New(tx)); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "commit")
}

// translate maps driver errors to the store's sentinel errors.
func translate(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}

	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		switch liteErr.ExtendedCode {
		case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
			return ErrUniqueViolation
		case sqlite3.ErrConstraintForeignKey:
			return ErrForeignKeyViolation
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505":
			return ErrUniqueViolation
		case "23503":
			return ErrForeignKeyViolation
		}
	}
	return err
}

func wrap(err error, op string) error {
	if err == nil {
		return nil
	}
	return errors.Wrap(translate(err), op)
}

func (s *Store) get(ctx context.Context, op string, dest any, query string, args ...any) error {
	return wrap(sqlx.GetContext(ctx, s.db, dest, s.db.Rebind(query), args...), op)
}

func (s *Store) selectAll(ctx context.Context, op string, dest any, query string, args ...any) error {
	return wrap(sqlx.SelectContext(ctx, s.db, dest, s.db.Rebind(query), args...), op)
}

// insert runs an INSERT ... RETURNING id statement.
func (s *Store) insert(ctx context.Context, op string, query string, args ...any) (id int64, err error) {
	err = s.db.QueryRowxContext(ctx, s.db.Rebind(query), args...).Scan(&id)
	return id, wrap(err, op)
}

// exec runs a statement that must touch at least one row.
func (s *Store) exec(ctx context.Context, op string, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(query), args...)
	if err != nil {
		return wrap(err, op)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return wrap(err, op)
	}
	if n < 1 {
		return errors.Wrap(ErrNotFound, op)
	}
	return nil
}
