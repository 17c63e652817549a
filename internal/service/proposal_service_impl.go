package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/milestone"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
)

const proposalsEndpoint = "/proposals"

type proposalService struct {
	runner   Runner
	observer UseCaseObserver
}

func NewProposalService(runner Runner, observers ...UseCaseObserver) ProposalService {
	return &proposalService{runner: runner, observer: useCaseObserverOrNoop(observers)}
}

func (s *proposalService) Submit(ctx context.Context, req contract.SubmitProposalRequest) (*contract.SubmitProposalResult, error) {
	start := time.Now()
	result, err := s.submit(ctx, req)

	outcome := ""
	fields := map[string]any{"project_id": req.ProjectID}
	if result != nil {
		outcome = string(result.Outcome)
		fields["attempts"] = result.Attempts
		fields["refreshed"] = result.Refreshed
	}
	observe(ctx, s.observer, "proposal.submit", start, outcome, err, fields)
	return result, err
}

func (s *proposalService) submit(ctx context.Context, req contract.SubmitProposalRequest) (*contract.SubmitProposalResult, error) {
	body, err := BuildProposalPayload(req)
	if err != nil {
		return nil, err
	}

	out, err := s.runner.Run(ctx, api.RequestDescriptor{
		Endpoint: proposalsEndpoint,
		Method:   http.MethodPost,
		Body:     body,
	})
	if err != nil {
		return nil, err
	}

	result := &contract.SubmitProposalResult{Attempts: out.Attempts, Refreshed: out.Refreshed}
	if out.Kind == session.OutcomeConflict {
		result.Outcome = contract.SubmitOutcomeAlreadySubmitted
		result.Notice = contract.ConflictNotice(out.Conflict)
		return result, nil
	}

	result.Outcome = contract.SubmitOutcomeSubmitted
	result.Proposal = decodeProposal(out.Body)
	result.Notice = contract.Notice{Level: contract.NoticeInfo, Text: "Proposal submitted."}
	return result, nil
}

// BuildProposalPayload validates req and encodes the POST /proposals body.
// The returned bytes are what goes on the wire on every attempt.
func BuildProposalPayload(req contract.SubmitProposalRequest) ([]byte, error) {
	payload := domain.ProposalPayload{
		ProjectID:      strings.TrimSpace(req.ProjectID),
		CoverLetter:    req.CoverLetter,
		ProposedBudget: req.ProposedBudget,
		Currency:       req.Currency,
	}

	if req.Plan != nil {
		if err := checkPlan(*req.Plan, req.ProposedBudget); err != nil {
			return nil, err
		}
		payload.UseStructuredMilestones = true
		payload.Milestones = req.Plan.Milestones
	} else {
		payload.FreeTextMilestones = strings.TrimSpace(req.FreeTextMilestones)
	}

	if err := payload.Validate(); err != nil {
		return nil, &contract.SubmitError{Code: contract.ErrInvalidPayload, Message: err.Error(), Err: err}
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encoding proposal payload: %w", err)
	}
	return body, nil
}

func checkPlan(plan domain.MilestonePlan, proposedBudget float64) error {
	if math.Abs(plan.TotalBudget-proposedBudget) >= 0.005 {
		return &contract.SubmitError{
			Code:    contract.ErrBudgetMismatch,
			Message: fmt.Sprintf("milestone plan total %.2f does not match proposed budget %.2f", plan.TotalBudget, proposedBudget),
		}
	}

	err := milestone.ValidateForSubmit(plan)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, milestone.ErrEmptyPlan):
		return &contract.SubmitError{Code: contract.ErrEmptyMilestones, Message: "add at least one milestone", Err: err}
	case errors.Is(err, milestone.ErrOverBudget):
		return &contract.SubmitError{
			Code:    contract.ErrBudgetExceeded,
			Message: fmt.Sprintf("milestones exceed the proposed budget by %.2f", milestone.Overshoot(plan)),
			Err:     err,
		}
	default:
		return &contract.SubmitError{Code: contract.ErrInvalidPayload, Message: err.Error(), Err: err}
	}
}

// decodeProposal reads {"proposal": {...}} or a bare proposal object. The
// write already succeeded, so an unreadable body yields nil.
func decodeProposal(raw json.RawMessage) *domain.Proposal {
	env, err := api.Decode[struct {
		Proposal *domain.Proposal `json:"proposal"`
	}](raw)
	if err == nil && env.Proposal != nil {
		return env.Proposal
	}
	p, err := api.Decode[domain.Proposal](raw)
	if err != nil || p.ID == "" {
		return nil
	}
	return &p
}
