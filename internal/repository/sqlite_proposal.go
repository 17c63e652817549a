package repository

import (
	"context"
	"fmt"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

// SQLiteProposalRepo implements ProposalRepo. Create writes two tables, so
// callers that need atomicity pass a transaction from db.UnitOfWork.
type SQLiteProposalRepo struct {
	db db.DBTX
}

func NewSQLiteProposalRepo(conn db.DBTX) *SQLiteProposalRepo {
	return &SQLiteProposalRepo{db: conn}
}

const proposalColumns = `id, project_id, freelancer_id, cover_letter, proposed_budget, currency, status,
	use_structured, free_text_milestones, created_at`

func (r *SQLiteProposalRepo) Create(ctx context.Context, p *domain.Proposal) error {
	query := `INSERT INTO proposals (` + proposalColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		p.ID,
		p.ProjectID,
		p.FreelancerID,
		p.CoverLetter,
		p.ProposedBudget,
		string(p.Currency),
		string(p.Status),
		boolToInt(p.UseStructuredMilestones),
		p.FreeTextMilestones,
		formatTime(p.CreatedAt),
	)
	if err != nil {
		return wrapErr("inserting proposal", err)
	}

	for _, m := range p.Milestones {
		_, err := r.db.ExecContext(ctx,
			`INSERT INTO proposal_milestones (id, proposal_id, seq, title, description, amount, duration_days)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			m.ID, p.ID, m.Order, m.Title, m.Description, m.Amount, m.DurationDays)
		if err != nil {
			return wrapErr(fmt.Sprintf("inserting milestone %d", m.Order), err)
		}
	}
	return nil
}

func (r *SQLiteProposalRepo) GetByID(ctx context.Context, id string) (*domain.Proposal, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`, id)
	p, err := scanProposal(row)
	if err != nil {
		return nil, wrapErr("getting proposal", err)
	}
	if p.Milestones, err = r.milestones(ctx, p.ID); err != nil {
		return nil, err
	}
	return p, nil
}

func (r *SQLiteProposalRepo) ListByProject(ctx context.Context, projectID string) ([]domain.Proposal, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+proposalColumns+` FROM proposals WHERE project_id = ? ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("listing proposals: %w", err)
	}

	proposals := []domain.Proposal{}
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scanning proposal: %w", err)
		}
		proposals = append(proposals, *p)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterating proposals: %w", err)
	}
	rows.Close()

	// Milestones are loaded after the cursor closes; :memory: databases run
	// on a single connection.
	for i := range proposals {
		ms, err := r.milestones(ctx, proposals[i].ID)
		if err != nil {
			return nil, err
		}
		proposals[i].Milestones = ms
	}
	return proposals, nil
}

func (r *SQLiteProposalRepo) milestones(ctx context.Context, proposalID string) ([]domain.Milestone, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, seq, title, description, amount, duration_days FROM proposal_milestones
		WHERE proposal_id = ? ORDER BY seq`, proposalID)
	if err != nil {
		return nil, fmt.Errorf("listing milestones: %w", err)
	}
	defer rows.Close()

	var ms []domain.Milestone
	for rows.Next() {
		var m domain.Milestone
		if err := rows.Scan(&m.ID, &m.Order, &m.Title, &m.Description, &m.Amount, &m.DurationDays); err != nil {
			return nil, fmt.Errorf("scanning milestone: %w", err)
		}
		ms = append(ms, m)
	}
	return ms, rows.Err()
}

func scanProposal(s scanner) (*domain.Proposal, error) {
	var (
		p                         domain.Proposal
		currency, status, created string
		structured                int
	)
	err := s.Scan(&p.ID, &p.ProjectID, &p.FreelancerID, &p.CoverLetter, &p.ProposedBudget, &currency, &status,
		&structured, &p.FreeTextMilestones, &created)
	if err != nil {
		return nil, err
	}
	p.Currency = domain.Currency(currency)
	p.Status = domain.ProposalStatus(status)
	p.UseStructuredMilestones = intToBool(structured)
	p.CreatedAt = parseTime(created)
	return &p, nil
}
