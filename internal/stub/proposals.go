package stub

import (
	"context"
	"errors"
	"net/http"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/db"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/milestone"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/repository"
	"github.com/google/uuid"
)

// DuplicateProposalMessage is the backend's exact wording for a second
// proposal on the same project.
const DuplicateProposalMessage = "You have already submitted a proposal for this project"

func (s *Server) handleSubmitProposal(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if p.user == nil {
		s.writeError(w, r, http.StatusUnauthorized, errorBody{Message: "Missing authorization header"})
		return
	}
	if p.user.Role != domain.RoleFreelancer {
		s.writeError(w, r, http.StatusForbidden, errorBody{Error: "Only freelancers can submit proposals"})
		return
	}

	var payload domain.ProposalPayload
	if err := decodeBody(w, r, &payload); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}
	if err := payload.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}
	if payload.UseStructuredMilestones {
		plan := domain.MilestonePlan{TotalBudget: payload.ProposedBudget, Milestones: payload.Milestones}
		if err := milestone.ValidateForSubmit(plan); err != nil {
			s.writeError(w, r, http.StatusBadRequest, errorBody{Error: "Invalid milestones", Details: err.Error()})
			return
		}
	}

	proposal := &domain.Proposal{
		ID:                      uuid.New().String(),
		ProjectID:               payload.ProjectID,
		FreelancerID:            p.user.ID,
		CoverLetter:             payload.CoverLetter,
		ProposedBudget:          payload.ProposedBudget,
		Currency:                payload.Currency,
		Status:                  domain.ProposalPending,
		CreatedAt:               s.opts.Now().UTC(),
		UseStructuredMilestones: payload.UseStructuredMilestones,
		Milestones:              payload.Milestones,
		FreeTextMilestones:      payload.FreeTextMilestones,
	}
	for i := range proposal.Milestones {
		if proposal.Milestones[i].ID == "" {
			proposal.Milestones[i].ID = uuid.New().String()
		}
	}

	err := s.uow.WithinTx(r.Context(), func(ctx context.Context, tx db.DBTX) error {
		proj, err := s.projects(tx).GetByID(ctx, payload.ProjectID)
		if err != nil {
			return err
		}
		if proj.Status != domain.ProjectOpen {
			return errProjectClosed
		}
		return s.proposals(tx).Create(ctx, proposal)
	})
	switch {
	case err == nil:
		s.writeJSON(w, r, http.StatusCreated, map[string]any{"proposal": proposal})
	case errors.Is(err, repository.ErrDuplicate):
		s.writeError(w, r, http.StatusConflict, errorBody{Error: DuplicateProposalMessage})
	case errors.Is(err, repository.ErrNotFound):
		s.writeError(w, r, http.StatusNotFound, errorBody{Error: "Project not found"})
	case errors.Is(err, errProjectClosed):
		s.writeError(w, r, http.StatusBadRequest, errorBody{Error: "Project is not accepting proposals"})
	default:
		s.opts.Logger.Error("stub_submit_proposal", "error", err)
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to submit proposal"})
	}
}

var errProjectClosed = errors.New("project closed")

func (s *Server) handleListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := s.proposals(s.db).ListByProject(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to load proposals"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"proposals": proposals})
}
