package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

// SQLiteProjectRepo implements ProjectRepo using a SQLite database.
type SQLiteProjectRepo struct {
	db db.DBTX
}

func NewSQLiteProjectRepo(conn db.DBTX) *SQLiteProjectRepo {
	return &SQLiteProjectRepo{db: conn}
}

const projectColumns = `id, title, description, budget_min, budget_max, currency, status, client_id, created_at`

func (r *SQLiteProjectRepo) Create(ctx context.Context, p *domain.Project) error {
	query := `INSERT INTO projects (` + projectColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.Title,
		p.Description,
		p.BudgetMin,
		p.BudgetMax,
		string(p.Currency),
		string(p.Status),
		p.ClientID,
		formatTime(p.CreatedAt),
	)
	return wrapErr("inserting project", err)
}

func (r *SQLiteProjectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	p, err := scanProject(row)
	if err != nil {
		return nil, wrapErr("getting project", err)
	}
	return p, nil
}

// List returns projects oldest first. An empty status lists all of them.
func (r *SQLiteProjectRepo) List(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects`
	var args []any
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, string(status))
	}
	query += ` ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

func (r *SQLiteProjectRepo) ExistsForClient(ctx context.Context, clientID, title string) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM projects WHERE client_id = ? AND LOWER(title) = LOWER(?)`, clientID, title).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("checking project title: %w", err)
	}
	return n > 0, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanProject(s scanner) (*domain.Project, error) {
	var (
		p                          domain.Project
		currency, status, created string
	)
	err := s.Scan(&p.ID, &p.Title, &p.Description, &p.BudgetMin, &p.BudgetMax, &currency, &status, &p.ClientID, &created)
	if err != nil {
		return nil, err
	}
	p.Currency = domain.Currency(currency)
	p.Status = domain.ProjectStatus(status)
	p.CreatedAt = parseTime(created)
	return &p, nil
}

var _ scanner = (*sql.Row)(nil)
