package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
)

type adminService struct {
	runner   Runner
	observer UseCaseObserver
}

func NewAdminService(runner Runner, observers ...UseCaseObserver) AdminService {
	return &adminService{runner: runner, observer: useCaseObserverOrNoop(observers)}
}

func (s *adminService) UpdateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*contract.UpdateUserStatusResult, error) {
	start := time.Now()
	result, err := s.updateUserStatus(ctx, strings.TrimSpace(userID), status)
	outcome := ""
	if result != nil {
		outcome = "updated"
		if !result.Changed {
			outcome = "conflict"
		}
	}
	observe(ctx, s.observer, "admin.update_user_status", start, outcome, err,
		map[string]any{"user_id": userID, "status": string(status)})
	return result, err
}

func (s *adminService) updateUserStatus(ctx context.Context, userID string, status domain.UserStatus) (*contract.UpdateUserStatusResult, error) {
	if userID == "" {
		return nil, &contract.SubmitError{Code: contract.ErrInvalidPayload, Message: "user ID is required"}
	}
	if !domain.ValidUserStatuses[status] {
		return nil, &contract.SubmitError{
			Code:    contract.ErrInvalidPayload,
			Message: fmt.Sprintf("invalid status %q (want active, suspended or banned)", status),
		}
	}

	body, err := json.Marshal(map[string]string{"status": string(status)})
	if err != nil {
		return nil, err
	}
	out, err := s.runner.Run(ctx, api.RequestDescriptor{
		Endpoint: "/admin/users/" + url.PathEscape(userID) + "/status",
		Method:   http.MethodPut,
		Body:     body,
	})
	if err != nil {
		return nil, err
	}

	result := &contract.UpdateUserStatusResult{UserID: userID, Status: status}
	if out.Kind == session.OutcomeConflict {
		result.Notice = contract.ConflictNotice(out.Conflict)
		return result, nil
	}
	result.Changed = true
	result.Notice = contract.Notice{Level: contract.NoticeInfo, Text: fmt.Sprintf("User %s is now %s.", userID, status)}
	return result, nil
}
