package contract

import (
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
)

// SubmitProposalRequest is what the UI hands over on submit. Plan is used
// when non-nil; otherwise FreeTextMilestones describes the payment schedule.
type SubmitProposalRequest struct {
	ProjectID          string
	CoverLetter        string
	ProposedBudget     float64
	Currency           domain.Currency
	Plan               *domain.MilestonePlan
	FreeTextMilestones string
}

type SubmitOutcome string

const (
	SubmitOutcomeSubmitted        SubmitOutcome = "submitted"
	SubmitOutcomeAlreadySubmitted SubmitOutcome = "already_submitted"
)

type SubmitProposalResult struct {
	Outcome  SubmitOutcome
	Proposal *domain.Proposal // nil when the backend did not echo it back
	Notice   Notice
	// Attempts counts orchestrator calls (1, or 2 after a session refresh).
	Attempts  int
	Refreshed bool
}

type SubmitErrorCode string

const (
	ErrInvalidPayload  SubmitErrorCode = "INVALID_PAYLOAD"
	ErrBudgetExceeded  SubmitErrorCode = "BUDGET_EXCEEDED"
	ErrBudgetMismatch  SubmitErrorCode = "BUDGET_MISMATCH"
	ErrEmptyMilestones SubmitErrorCode = "EMPTY_MILESTONES"
)

// SubmitError rejects a submission before any network call.
type SubmitError struct {
	Code    SubmitErrorCode
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return string(e.Code) + ": " + e.Message
}

func (e *SubmitError) Unwrap() error { return e.Err }
