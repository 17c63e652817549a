package db_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDB_FilePragmasOnEveryConnection(t *testing.T) {
	database := testutil.NewTestFileDB(t)
	database.SetMaxOpenConns(4)
	ctx := context.Background()

	// Hold several connections at once so the pragmas are checked on more
	// than the first one.
	for i := 0; i < 3; i++ {
		conn, err := database.Conn(ctx)
		require.NoError(t, err)
		defer conn.Close()

		var mode string
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA journal_mode`).Scan(&mode))
		assert.Equal(t, "wal", mode)

		var fk int
		require.NoError(t, conn.QueryRowContext(ctx, `PRAGMA foreign_keys`).Scan(&fk))
		assert.Equal(t, 1, fk, "connection %d", i)
	}
}

func TestWithinTx_ConcurrentWritersOnFileDB(t *testing.T) {
	database := testutil.NewTestFileDB(t)
	uow := db.NewSQLiteUnitOfWork(database)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- uow.WithinTx(context.Background(), func(ctx context.Context, tx db.DBTX) error {
				return insertUser(ctx, tx, fmt.Sprintf("w%d", i))
			})
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.NoError(t, err)
	}
	assert.Equal(t, writers, countUsers(t, database))
}
