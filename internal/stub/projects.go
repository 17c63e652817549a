package stub

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/repository"
	"github.com/google/uuid"
)

func (s *Server) handleListProjects(w http.ResponseWriter, r *http.Request) {
	status := domain.ProjectStatus(r.URL.Query().Get("status"))
	projects, err := s.projects(s.db).List(r.Context(), status)
	if err != nil {
		s.opts.Logger.Error("stub_list_projects", "error", err)
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to load projects"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, map[string]any{"projects": projects})
}

func (s *Server) handleCreateProject(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if p.user == nil || (p.user.Role != domain.RoleClient && p.user.Role != domain.RoleAdmin) {
		s.writeError(w, r, http.StatusForbidden, errorBody{Error: "Only clients can post projects"})
		return
	}

	var draft domain.ProjectDraft
	if err := decodeBody(w, r, &draft); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errorBody{Error: "Invalid JSON body"})
		return
	}
	if err := draft.Validate(); err != nil {
		s.writeError(w, r, http.StatusBadRequest, errorBody{Error: err.Error()})
		return
	}

	repo := s.projects(s.db)
	exists, err := repo.ExistsForClient(r.Context(), p.user.ID, draft.Title)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to create project"})
		return
	}
	if exists {
		s.writeError(w, r, http.StatusConflict, errorBody{Error: "Project already exists", Code: "already_exists"})
		return
	}

	proj := &domain.Project{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		BudgetMin:   draft.BudgetMin,
		BudgetMax:   draft.BudgetMax,
		Currency:    draft.Currency,
		Status:      domain.ProjectOpen,
		ClientID:    p.user.ID,
		CreatedAt:   s.opts.Now().UTC(),
	}
	if err := repo.Create(r.Context(), proj); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.writeError(w, r, http.StatusConflict, errorBody{Error: "Project already exists", Code: "already_exists"})
			return
		}
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to create project"})
		return
	}
	s.writeJSON(w, r, http.StatusCreated, map[string]any{"project": proj})
}

// SeedProject opens a project owned by clientID, bypassing HTTP.
func (s *Server) SeedProject(ctx context.Context, clientID string, draft domain.ProjectDraft) (*domain.Project, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	proj := &domain.Project{
		ID:          uuid.New().String(),
		Title:       strings.TrimSpace(draft.Title),
		Description: draft.Description,
		BudgetMin:   draft.BudgetMin,
		BudgetMax:   draft.BudgetMax,
		Currency:    draft.Currency,
		Status:      domain.ProjectOpen,
		ClientID:    clientID,
		CreatedAt:   s.opts.Now().UTC(),
	}
	if err := s.projects(s.db).Create(ctx, proj); err != nil {
		return nil, err
	}
	return proj, nil
}
