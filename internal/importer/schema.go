// Package importer loads seed fixtures for the stub backend: users,
// projects and proposals described in one JSON file and linked by refs.
package importer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
)

// SeedSchema is the top-level JSON structure of a seed file.
type SeedSchema struct {
	Users     []UserImport     `json:"users"`
	Projects  []ProjectImport  `json:"projects,omitempty"`
	Proposals []ProposalImport `json:"proposals,omitempty"`
}

// UserImport defines an account. Ref is local to the file.
type UserImport struct {
	Ref         string `json:"ref"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
	Role        string `json:"role"`
	Status      string `json:"status,omitempty"`
	// IssueSession asks for a token pair to be issued for this user.
	IssueSession bool `json:"issue_session,omitempty"`
}

// ProjectImport defines a project owned by a client user.
type ProjectImport struct {
	Ref         string  `json:"ref"`
	ClientRef   string  `json:"client_ref"`
	Title       string  `json:"title"`
	Description string  `json:"description,omitempty"`
	BudgetMin   float64 `json:"budget_min,omitempty"`
	BudgetMax   float64 `json:"budget_max,omitempty"`
	Currency    string  `json:"currency,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// ProposalImport defines a proposal a freelancer already sent.
type ProposalImport struct {
	ProjectRef         string            `json:"project_ref"`
	FreelancerRef      string            `json:"freelancer_ref"`
	CoverLetter        string            `json:"cover_letter"`
	ProposedBudget     float64           `json:"proposed_budget"`
	Currency           string            `json:"currency,omitempty"`
	Milestones         []MilestoneImport `json:"milestones,omitempty"`
	FreeTextMilestones string            `json:"free_text_milestones,omitempty"`
}

// MilestoneImport is one milestone of a structured proposal. Order follows
// position in the list.
type MilestoneImport struct {
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Amount       float64 `json:"amount"`
	DurationDays int     `json:"duration_days,omitempty"`
}

// LoadSeedSchema reads and parses a seed JSON file.
func LoadSeedSchema(path string) (*SeedSchema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSeedSchema(data)
}

// ParseSeedSchema parses seed JSON. Unknown fields are rejected so typos in
// hand-written fixtures surface.
func ParseSeedSchema(data []byte) (*SeedSchema, error) {
	var schema SeedSchema
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&schema); err != nil {
		return nil, fmt.Errorf("parsing seed file: %w", err)
	}
	return &schema, nil
}
