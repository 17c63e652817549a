package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/google/uuid"
)

// Seed is a converted schema ready for persistence.
type Seed struct {
	Users     []*domain.User
	Projects  []*domain.Project
	Proposals []*domain.Proposal

	// SessionUsers lists user IDs that asked for a token pair.
	SessionUsers []string
	// Refs maps every file-local ref to the ID it was given.
	Refs map[string]string
}

// Convert transforms a validated SeedSchema into domain objects. Call
// ValidateSeedSchema first; Convert assumes the schema is valid.
func Convert(schema *SeedSchema, now time.Time) (*Seed, error) {
	now = now.UTC()
	seed := &Seed{Refs: make(map[string]string)}

	for _, u := range schema.Users {
		user := &domain.User{
			ID:          uuid.New().String(),
			Email:       strings.TrimSpace(u.Email),
			DisplayName: u.DisplayName,
			Role:        domain.Role(u.Role),
			Status:      domain.UserStatus(coalesce(u.Status, string(domain.UserActive))),
			CreatedAt:   now,
		}
		if user.DisplayName == "" {
			user.DisplayName, _, _ = strings.Cut(user.Email, "@")
		}
		seed.Refs[u.Ref] = user.ID
		seed.Users = append(seed.Users, user)
		if u.IssueSession {
			seed.SessionUsers = append(seed.SessionUsers, user.ID)
		}
	}

	currencies := make(map[string]domain.Currency)
	for _, p := range schema.Projects {
		clientID, ok := seed.Refs[p.ClientRef]
		if !ok {
			return nil, fmt.Errorf("client_ref %q not found for project %q", p.ClientRef, p.Ref)
		}
		proj := &domain.Project{
			ID:          uuid.New().String(),
			Title:       strings.TrimSpace(p.Title),
			Description: p.Description,
			BudgetMin:   p.BudgetMin,
			BudgetMax:   p.BudgetMax,
			Currency:    currencyOrDefault(p.Currency),
			Status:      domain.ProjectStatus(coalesce(p.Status, string(domain.ProjectOpen))),
			ClientID:    clientID,
			CreatedAt:   now,
		}
		seed.Refs[p.Ref] = proj.ID
		currencies[p.Ref] = proj.Currency
		seed.Projects = append(seed.Projects, proj)
	}

	for _, p := range schema.Proposals {
		projectID, ok := seed.Refs[p.ProjectRef]
		if !ok {
			return nil, fmt.Errorf("project_ref %q not found", p.ProjectRef)
		}
		freelancerID, ok := seed.Refs[p.FreelancerRef]
		if !ok {
			return nil, fmt.Errorf("freelancer_ref %q not found", p.FreelancerRef)
		}

		currency := currencies[p.ProjectRef]
		if p.Currency != "" {
			currency = domain.Currency(p.Currency)
		}
		prop := &domain.Proposal{
			ID:                      uuid.New().String(),
			ProjectID:               projectID,
			FreelancerID:            freelancerID,
			CoverLetter:             p.CoverLetter,
			ProposedBudget:          p.ProposedBudget,
			Currency:                currency,
			Status:                  domain.ProposalPending,
			CreatedAt:               now,
			UseStructuredMilestones: len(p.Milestones) > 0,
			FreeTextMilestones:      p.FreeTextMilestones,
		}
		for i, m := range p.Milestones {
			prop.Milestones = append(prop.Milestones, domain.Milestone{
				ID:           uuid.New().String(),
				Title:        strings.TrimSpace(m.Title),
				Description:  m.Description,
				Amount:       m.Amount,
				DurationDays: m.DurationDays,
				Order:        i + 1,
			})
		}
		seed.Proposals = append(seed.Proposals, prop)
	}

	return seed, nil
}

func coalesce(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
