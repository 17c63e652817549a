package domain

import (
	"fmt"
	"strings"
	"time"
)

type Proposal struct {
	ID             string         `json:"id"`
	ProjectID      string         `json:"project_id"`
	FreelancerID   string         `json:"freelancer_id"`
	CoverLetter    string         `json:"cover_letter"`
	ProposedBudget float64        `json:"proposed_budget"`
	Currency       Currency       `json:"currency"`
	Status         ProposalStatus `json:"status"`
	CreatedAt      time.Time      `json:"created_at"`

	UseStructuredMilestones bool        `json:"use_structured_milestones"`
	Milestones              []Milestone `json:"milestones,omitempty"`
	FreeTextMilestones      string      `json:"free_text_milestones,omitempty"`
}

// ProposalPayload is the wire body of POST /proposals. It is encoded once
// per submission and the same bytes are resent on a retry.
type ProposalPayload struct {
	ProjectID               string      `json:"projectId"`
	CoverLetter             string      `json:"coverLetter"`
	ProposedBudget          float64     `json:"proposedBudget"`
	Currency                Currency    `json:"currency"`
	UseStructuredMilestones bool        `json:"useStructuredMilestones"`
	Milestones              []Milestone `json:"milestones,omitempty"`
	FreeTextMilestones      string      `json:"freeTextMilestones,omitempty"`
}

// Validate checks fields that do not depend on the milestone plan.
func (p *ProposalPayload) Validate() error {
	if strings.TrimSpace(p.ProjectID) == "" {
		return fmt.Errorf("project ID is required")
	}
	if strings.TrimSpace(p.CoverLetter) == "" {
		return fmt.Errorf("cover letter is required")
	}
	if p.ProposedBudget <= 0 {
		return fmt.Errorf("proposed budget must be positive, got %.2f", p.ProposedBudget)
	}
	if !ValidCurrencies[p.Currency] {
		return fmt.Errorf("unsupported currency %q", p.Currency)
	}
	if !p.UseStructuredMilestones && len(p.Milestones) > 0 {
		return fmt.Errorf("structured milestones supplied but useStructuredMilestones is false")
	}
	return nil
}
