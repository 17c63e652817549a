package repository

import (
	"context"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

// SQLiteUserRepo implements UserRepo.
type SQLiteUserRepo struct {
	db db.DBTX
}

func NewSQLiteUserRepo(conn db.DBTX) *SQLiteUserRepo {
	return &SQLiteUserRepo{db: conn}
}

func (r *SQLiteUserRepo) Create(ctx context.Context, u *domain.User) error {
	query := `INSERT INTO users (id, email, display_name, role, status, created_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.Email, u.DisplayName, string(u.Role), string(u.Status), formatTime(u.CreatedAt))
	return wrapErr("inserting user", err)
}

func (r *SQLiteUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `SELECT id, email, display_name, role, status, created_at FROM users WHERE id = ?`
	var (
		u                       domain.User
		role, status, createdAt string
	)
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.DisplayName, &role, &status, &createdAt)
	if err != nil {
		return nil, wrapErr("getting user", err)
	}
	u.Role = domain.Role(role)
	u.Status = domain.UserStatus(status)
	u.CreatedAt = parseTime(createdAt)
	return &u, nil
}

func (r *SQLiteUserRepo) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return wrapErr("updating user status", err)
	}
	return requireRow("updating user status", res)
}
