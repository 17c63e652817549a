package db

import (
	"database/sql"
	"fmt"
	"strings"
)

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id         TEXT PRIMARY KEY,
		email      TEXT NOT NULL UNIQUE,
		role       TEXT NOT NULL CHECK (role IN ('freelancer', 'client', 'admin')),
		status     TEXT NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'suspended', 'banned')),
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS sessions (
		access_token  TEXT PRIMARY KEY,
		refresh_token TEXT NOT NULL UNIQUE,
		user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		expires_at    TEXT NOT NULL,
		revoked       INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id          TEXT PRIMARY KEY,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		budget_min  REAL NOT NULL DEFAULT 0,
		budget_max  REAL NOT NULL DEFAULT 0,
		currency    TEXT NOT NULL CHECK (currency IN ('TWD', 'USD', 'CNY')),
		status      TEXT NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'in_progress', 'completed', 'cancelled')),
		client_id   TEXT NOT NULL REFERENCES users(id),
		created_at  TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS proposals (
		id                   TEXT PRIMARY KEY,
		project_id           TEXT NOT NULL REFERENCES projects(id) ON DELETE CASCADE,
		freelancer_id        TEXT NOT NULL REFERENCES users(id),
		cover_letter         TEXT NOT NULL,
		proposed_budget      REAL NOT NULL,
		currency             TEXT NOT NULL,
		status               TEXT NOT NULL DEFAULT 'pending' CHECK (status IN ('pending', 'accepted', 'rejected')),
		use_structured       INTEGER NOT NULL DEFAULT 0,
		free_text_milestones TEXT NOT NULL DEFAULT '',
		created_at           TEXT NOT NULL,
		UNIQUE (project_id, freelancer_id)
	)`,
	`CREATE TABLE IF NOT EXISTS proposal_milestones (
		id            TEXT PRIMARY KEY,
		proposal_id   TEXT NOT NULL REFERENCES proposals(id) ON DELETE CASCADE,
		seq           INTEGER NOT NULL,
		title         TEXT NOT NULL DEFAULT '',
		description   TEXT NOT NULL DEFAULT '',
		amount        REAL NOT NULL,
		duration_days INTEGER NOT NULL DEFAULT 0,
		UNIQUE (proposal_id, seq)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_sessions_refresh ON sessions(refresh_token)`,
	`CREATE INDEX IF NOT EXISTS idx_projects_status ON projects(status)`,
	`CREATE INDEX IF NOT EXISTS idx_proposals_project ON proposals(project_id)`,
	`ALTER TABLE users ADD COLUMN display_name TEXT NOT NULL DEFAULT ''`,
}

// Migrate runs all schema migrations. It is safe to call repeatedly.
func Migrate(db *sql.DB) error {
	for i, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			// ALTER TABLE statements re-run on every start.
			if strings.Contains(err.Error(), "duplicate column name") {
				continue
			}
			return fmt.Errorf("migration %d: %w", i, err)
		}
	}
	return nil
}

// IsUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
