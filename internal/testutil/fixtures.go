package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/google/uuid"
)

var emailCounter atomic.Int64

type UserOption func(*domain.User)

func WithRole(r domain.Role) UserOption {
	return func(u *domain.User) { u.Role = r }
}

func WithUserStatus(s domain.UserStatus) UserOption {
	return func(u *domain.User) { u.Status = s }
}

// NewTestUser returns a freelancer with a unique email.
func NewTestUser(opts ...UserOption) *domain.User {
	n := emailCounter.Add(1)
	u := &domain.User{
		ID:        uuid.New().String(),
		Email:     fmt.Sprintf("user%d@casewhr.test", n),
		Role:      domain.RoleFreelancer,
		Status:    domain.UserActive,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type ProjectOption func(*domain.Project)

func WithProjectStatus(s domain.ProjectStatus) ProjectOption {
	return func(p *domain.Project) { p.Status = s }
}

func WithBudget(min, max float64) ProjectOption {
	return func(p *domain.Project) {
		p.BudgetMin = min
		p.BudgetMax = max
	}
}

func NewTestProject(clientID, title string, opts ...ProjectOption) *domain.Project {
	p := &domain.Project{
		ID:        uuid.New().String(),
		Title:     title,
		BudgetMin: 1000,
		BudgetMax: 5000,
		Currency:  domain.CurrencyTWD,
		Status:    domain.ProjectOpen,
		ClientID:  clientID,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type ProposalOption func(*domain.Proposal)

// WithMilestones switches the proposal to a structured plan.
func WithMilestones(amounts ...float64) ProposalOption {
	return func(p *domain.Proposal) {
		p.UseStructuredMilestones = true
		p.FreeTextMilestones = ""
		p.Milestones = nil
		for i, a := range amounts {
			p.Milestones = append(p.Milestones, domain.Milestone{
				ID:     uuid.New().String(),
				Title:  fmt.Sprintf("Milestone %d", i+1),
				Amount: a,
				Order:  i + 1,
			})
		}
	}
}

func NewTestProposal(projectID, freelancerID string, opts ...ProposalOption) *domain.Proposal {
	p := &domain.Proposal{
		ID:                 uuid.New().String(),
		ProjectID:          projectID,
		FreelancerID:       freelancerID,
		CoverLetter:        "I can deliver this in two weeks.",
		ProposedBudget:     2000,
		Currency:           domain.CurrencyTWD,
		Status:             domain.ProposalPending,
		FreeTextMilestones: "Half upfront, half on delivery",
		CreatedAt:          time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}
