package repository

import (
	"context"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

// SQLiteSessionRepo implements SessionRepo over the sessions table.
type SQLiteSessionRepo struct {
	db db.DBTX
}

func NewSQLiteSessionRepo(conn db.DBTX) *SQLiteSessionRepo {
	return &SQLiteSessionRepo{db: conn}
}

const sessionColumns = `access_token, refresh_token, user_id, expires_at, revoked`

func (r *SQLiteSessionRepo) Create(ctx context.Context, s *domain.AuthSession) error {
	query := `INSERT INTO sessions (` + sessionColumns + `) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		s.AccessToken, s.RefreshToken, s.UserID, formatTime(s.ExpiresAt), boolToInt(s.Revoked))
	return wrapErr("inserting session", err)
}

func (r *SQLiteSessionRepo) GetByAccessToken(ctx context.Context, token string) (*domain.AuthSession, error) {
	return r.get(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE access_token = ?`, token)
}

func (r *SQLiteSessionRepo) GetByRefreshToken(ctx context.Context, token string) (*domain.AuthSession, error) {
	return r.get(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE refresh_token = ?`, token)
}

func (r *SQLiteSessionRepo) get(ctx context.Context, query, arg string) (*domain.AuthSession, error) {
	var (
		s         domain.AuthSession
		expiresAt string
		revoked   int
	)
	err := r.db.QueryRowContext(ctx, query, arg).Scan(&s.AccessToken, &s.RefreshToken, &s.UserID, &expiresAt, &revoked)
	if err != nil {
		return nil, wrapErr("getting session", err)
	}
	s.ExpiresAt = parseTime(expiresAt)
	s.Revoked = intToBool(revoked)
	return &s, nil
}

func (r *SQLiteSessionRepo) Revoke(ctx context.Context, accessToken string) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET revoked = 1 WHERE access_token = ?`, accessToken)
	if err != nil {
		return wrapErr("revoking session", err)
	}
	return requireRow("revoking session", res)
}

// ExpireAt moves the expiry of a session, for tests and the stub's admin hooks.
func (r *SQLiteSessionRepo) ExpireAt(ctx context.Context, accessToken string, at time.Time) error {
	res, err := r.db.ExecContext(ctx, `UPDATE sessions SET expires_at = ? WHERE access_token = ?`, formatTime(at), accessToken)
	if err != nil {
		return wrapErr("expiring session", err)
	}
	return requireRow("expiring session", res)
}
