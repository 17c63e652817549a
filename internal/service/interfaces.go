package service

import (
	"context"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
)

type ProjectService interface {
	List(ctx context.Context) []domain.Project
	Create(ctx context.Context, draft domain.ProjectDraft) (*contract.CreateProjectResult, error)
}

type ProposalService interface {
	Submit(ctx context.Context, req contract.SubmitProposalRequest) (*contract.SubmitProposalResult, error)
}

type AdminService interface {
	UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*contract.UpdateUserStatusResult, error)
}

// Runner sends an authenticated write. *session.Orchestrator satisfies it.
type Runner interface {
	Run(ctx context.Context, req api.RequestDescriptor) (*session.Outcome, error)
}

// CredentialSource supplies the credential for plain reads.
type CredentialSource interface {
	Current() api.Credential
}
