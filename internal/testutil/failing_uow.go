package testutil

import (
	"context"
	"database/sql"
	"strings"
	"sync"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
)

// FaultyUoW runs transactions through a real SQLiteUnitOfWork and makes the
// FailOn-th write whose SQL contains Match return Err (counted from 1; an
// empty Match counts every write). Reads pass through untouched.
type FaultyUoW struct {
	DB     *sql.DB
	Match  string
	FailOn int
	Err    error

	mu    sync.Mutex
	seen  int
	execs []string
}

func (u *FaultyUoW) WithinTx(ctx context.Context, fn func(ctx context.Context, tx db.DBTX) error) error {
	return db.NewSQLiteUnitOfWork(u.DB).WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return fn(ctx, &faultyTx{DBTX: tx, uow: u})
	})
}

// Execs returns the write statements attempted so far, failed one included.
func (u *FaultyUoW) Execs() []string {
	u.mu.Lock()
	defer u.mu.Unlock()
	return append([]string(nil), u.execs...)
}

func (u *FaultyUoW) shouldFail(query string) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.execs = append(u.execs, strings.Join(strings.Fields(query), " "))
	if u.Match != "" && !strings.Contains(query, u.Match) {
		return false
	}
	u.seen++
	return u.seen == u.FailOn
}

type faultyTx struct {
	db.DBTX
	uow *FaultyUoW
}

func (f *faultyTx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.uow.shouldFail(query) {
		return nil, f.uow.Err
	}
	return f.DBTX.ExecContext(ctx, query, args...)
}
