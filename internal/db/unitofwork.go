package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

// UnitOfWork runs fn inside one transaction. Stub handlers that touch more
// than one table (a proposal and its milestones) go through it.
type UnitOfWork interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error
}

// SQLiteUnitOfWork implements UnitOfWork with database/sql transactions.
// A transaction that fails because another writer holds the database lock
// is rolled back and run again, so fn may be called more than once.
type SQLiteUnitOfWork struct {
	db          *sql.DB
	busyRetries uint64
	busyWait    time.Duration
}

// UoWOption configures a SQLiteUnitOfWork.
type UoWOption func(*SQLiteUnitOfWork)

// WithBusyRetry sets how often a locked transaction is retried and the wait
// between tries. A non-positive wait keeps the default.
func WithBusyRetry(retries uint64, wait time.Duration) UoWOption {
	return func(u *SQLiteUnitOfWork) {
		u.busyRetries = retries
		if wait > 0 {
			u.busyWait = wait
		}
	}
}

func NewSQLiteUnitOfWork(db *sql.DB, opts ...UoWOption) *SQLiteUnitOfWork {
	u := &SQLiteUnitOfWork{db: db, busyRetries: 3, busyWait: 20 * time.Millisecond}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func (u *SQLiteUnitOfWork) WithinTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	backoff := retry.WithMaxRetries(u.busyRetries, retry.NewConstant(u.busyWait))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := u.runTx(ctx, fn)
		if IsBusy(err) {
			return retry.RetryableError(err)
		}
		return err
	})
}

func (u *SQLiteUnitOfWork) runTx(ctx context.Context, fn func(ctx context.Context, tx DBTX) error) error {
	tx, err := u.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(ctx, tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback failed: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// IsBusy reports whether err is SQLite refusing a write because another
// connection holds the lock.
func IsBusy(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
