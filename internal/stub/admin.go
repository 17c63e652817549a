package stub

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/repository"
)

func (s *Server) handleUpdateUserStatus(w http.ResponseWriter, r *http.Request) {
	p := principalFrom(r.Context())
	if p.user == nil || p.user.Role != domain.RoleAdmin {
		s.writeError(w, r, http.StatusForbidden, errorBody{Error: "Admin access required"})
		return
	}

	var req struct {
		Status domain.UserStatus `json:"status"`
	}
	if err := decodeBody(w, r, &req); err != nil || !domain.ValidUserStatuses[req.Status] {
		s.writeError(w, r, http.StatusBadRequest, errorBody{Error: "Invalid status"})
		return
	}

	userID := r.PathValue("id")
	users := s.users(s.db)
	target, err := users.GetByID(r.Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		s.writeError(w, r, http.StatusNotFound, errorBody{Error: "User not found"})
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to update user"})
		return
	}
	if target.Status == req.Status {
		s.writeError(w, r, http.StatusConflict, errorBody{
			Error: fmt.Sprintf("User is already %s", req.Status),
			Code:  "conflict",
		})
		return
	}

	if err := users.UpdateStatus(r.Context(), userID, req.Status); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Failed to update user"})
		return
	}
	target.Status = req.Status
	s.writeJSON(w, r, http.StatusOK, map[string]any{"user": target})
}
