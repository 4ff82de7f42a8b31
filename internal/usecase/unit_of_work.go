package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// UnitOfWork runs a function inside a single database transaction with a
// deadline, retrying the whole unit on transient conflicts.
type UnitOfWork struct {
	txManager TransactionManager
	retrier   Retrier
	timeout   time.Duration
}

// NewUnitOfWork creates a UnitOfWork. A nil retrier runs each unit once.
func NewUnitOfWork(txManager TransactionManager, retrier Retrier) *UnitOfWork {
	return &UnitOfWork{
		txManager: txManager,
		retrier:   retrier,
		timeout:   DefaultTransactionTimeout,
	}
}

// WithTimeout overrides the per-attempt transaction deadline.
func (u *UnitOfWork) WithTimeout(d time.Duration) *UnitOfWork {
	u.timeout = d
	return u
}

// Do executes fn in a transaction and commits it. Any error from fn, or an
// expired deadline, rolls the transaction back.
func (u *UnitOfWork) Do(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) error {
	attempt := func() error {
		return u.attempt(ctx, fn)
	}

	if u.retrier == nil {
		return attempt()
	}

	return u.retrier.Retry(ctx, attempt)
}

func (u *UnitOfWork) attempt(ctx context.Context, fn func(ctx context.Context, tx Transaction) error) (err error) {
	txCtx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	defer func() {
		if err != nil && errors.Is(txCtx.Err(), context.DeadlineExceeded) && !errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %w", context.DeadlineExceeded, err)
		}
	}()

	tx, err := u.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := fn(txCtx, tx); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}
