package uow

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const defaultTxTimeout = 5 * time.Second

type txKey struct{}

// WithTx stores a SQL transaction in context for downstream store usage.
func WithTx(ctx context.Context, tx *sql.Tx) context.Context {
	if tx == nil {
		return ctx
	}
	return context.WithValue(ctx, txKey{}, tx)
}

// Tx extracts the SQL transaction of the surrounding unit of work.
func Tx(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

// SQLRunner runs units of work backed by a database/sql transaction. Commit
// hooks run only after the transaction commits.
type SQLRunner struct {
	db      *sql.DB
	timeout time.Duration
	opts    *sql.TxOptions
}

// SQLOption configures a SQLRunner.
type SQLOption func(*SQLRunner)

// WithTimeout bounds transactions started without a caller deadline.
func WithTimeout(d time.Duration) SQLOption {
	return func(r *SQLRunner) {
		r.timeout = d
	}
}

// WithTxOptions sets the isolation level and read-only flag.
func WithTxOptions(opts *sql.TxOptions) SQLOption {
	return func(r *SQLRunner) {
		r.opts = opts
	}
}

// NewSQLRunner returns a runner over db.
func NewSQLRunner(db *sql.DB, opts ...SQLOption) *SQLRunner {
	r := &SQLRunner{db: db, timeout: defaultTxTimeout}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunInTx implements Runner. When ctx already carries an active unit, fn joins
// it and reuses its transaction.
func (r *SQLRunner) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := From(ctx); ok {
		return fn(ctx)
	}
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("transaction aborted: %w", err)
	}

	if _, hasDeadline := ctx.Deadline(); !hasDeadline && r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	tx, err := r.db.BeginTx(ctx, r.opts)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	u := New()
	defer func() {
		if u.Active() {
			_ = tx.Rollback()
			u.Rollback()
		}
	}()

	if err := fn(WithTx(WithUnit(ctx, u), tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	u.Commit()
	return nil
}
