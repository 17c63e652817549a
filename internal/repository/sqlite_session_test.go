package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionRepo_Lifecycle(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()

	user := testutil.NewTestUser()
	require.NoError(t, NewSQLiteUserRepo(database).Create(ctx, user))

	repo := NewSQLiteSessionRepo(database)
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s := &domain.AuthSession{AccessToken: "at-1", RefreshToken: "rt-1", UserID: user.ID, ExpiresAt: now.Add(time.Hour)}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.GetByRefreshToken(ctx, "rt-1")
	require.NoError(t, err)
	assert.Equal(t, "at-1", got.AccessToken)
	assert.False(t, got.Expired(now))

	require.NoError(t, repo.ExpireAt(ctx, "at-1", now.Add(-time.Second)))
	got, err = repo.GetByAccessToken(ctx, "at-1")
	require.NoError(t, err)
	assert.True(t, got.Expired(now))

	require.NoError(t, repo.Revoke(ctx, "at-1"))
	got, err = repo.GetByAccessToken(ctx, "at-1")
	require.NoError(t, err)
	assert.True(t, got.Revoked)

	assert.ErrorIs(t, repo.Revoke(ctx, "missing"), ErrNotFound)
}

func TestUserRepo_UpdateStatus(t *testing.T) {
	database := testutil.NewTestDB(t)
	ctx := context.Background()
	repo := NewSQLiteUserRepo(database)

	user := testutil.NewTestUser()
	require.NoError(t, repo.Create(ctx, user))
	require.NoError(t, repo.UpdateStatus(ctx, user.ID, domain.UserBanned))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.UserBanned, got.Status)

	assert.ErrorIs(t, repo.UpdateStatus(ctx, "ghost", domain.UserActive), ErrNotFound)
}
