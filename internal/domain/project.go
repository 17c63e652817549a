package domain

import (
	"fmt"
	"strings"
	"time"
)

type Project struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	BudgetMin   float64       `json:"budget_min"`
	BudgetMax   float64       `json:"budget_max"`
	Currency    Currency      `json:"currency"`
	Status      ProjectStatus `json:"status"`
	ClientID    string        `json:"client_id"`
	CreatedAt   time.Time     `json:"created_at"`
}

// ProjectDraft is what a client submits to open a new project.
type ProjectDraft struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	BudgetMin   float64  `json:"budget_min"`
	BudgetMax   float64  `json:"budget_max"`
	Currency    Currency `json:"currency"`
}

// Validate checks the draft before it is sent anywhere.
func (d *ProjectDraft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return fmt.Errorf("project title is required")
	}
	if d.BudgetMin < 0 || d.BudgetMax < 0 {
		return fmt.Errorf("budget must not be negative")
	}
	if d.BudgetMax > 0 && d.BudgetMin > d.BudgetMax {
		return fmt.Errorf("budget_min %.2f exceeds budget_max %.2f", d.BudgetMin, d.BudgetMax)
	}
	if !ValidCurrencies[d.Currency] {
		return fmt.Errorf("unsupported currency %q", d.Currency)
	}
	return nil
}
