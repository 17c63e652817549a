package repository

import (
	"context"
	"errors"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

var (
	ErrNotFound  = errors.New("not found")
	ErrDuplicate = errors.New("duplicate")
)

type UserRepo interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
}

type SessionRepo interface {
	Create(ctx context.Context, s *domain.AuthSession) error
	GetByAccessToken(ctx context.Context, token string) (*domain.AuthSession, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.AuthSession, error)
	Revoke(ctx context.Context, accessToken string) error
	ExpireAt(ctx context.Context, accessToken string, at time.Time) error
}

type ProjectRepo interface {
	Create(ctx context.Context, p *domain.Project) error
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, status domain.ProjectStatus) ([]domain.Project, error)
	ExistsForClient(ctx context.Context, clientID, title string) (bool, error)
}

type ProposalRepo interface {
	// Create stores the proposal and its milestones. A second proposal by
	// the same freelancer on the same project returns ErrDuplicate.
	Create(ctx context.Context, p *domain.Proposal) error
	GetByID(ctx context.Context, id string) (*domain.Proposal, error)
	ListByProject(ctx context.Context, projectID string) ([]domain.Proposal, error)
}
