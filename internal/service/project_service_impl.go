package service

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
)

const projectsEndpoint = "/projects"

type projectService struct {
	client   *api.Client
	creds    CredentialSource
	runner   Runner
	observer UseCaseObserver
}

func NewProjectService(client *api.Client, creds CredentialSource, runner Runner, observers ...UseCaseObserver) ProjectService {
	return &projectService{client: client, creds: creds, runner: runner, observer: useCaseObserverOrNoop(observers)}
}

// List never fails; an unreachable backend shows as no projects.
func (s *projectService) List(ctx context.Context) []domain.Project {
	start := time.Now()
	projects := api.CallList[domain.Project](ctx, s.client, api.RequestDescriptor{
		Endpoint:   projectsEndpoint,
		Method:     http.MethodGet,
		Credential: s.creds.Current(),
	}, "projects")
	observe(ctx, s.observer, "project.list", start, "listed", nil, map[string]any{"count": len(projects)})
	return projects
}

func (s *projectService) Create(ctx context.Context, draft domain.ProjectDraft) (*contract.CreateProjectResult, error) {
	start := time.Now()
	result, err := s.create(ctx, draft)
	outcome := ""
	if result != nil {
		outcome = "created"
		if !result.Created {
			outcome = "conflict"
		}
	}
	observe(ctx, s.observer, "project.create", start, outcome, err, map[string]any{"title": draft.Title})
	return result, err
}

func (s *projectService) create(ctx context.Context, draft domain.ProjectDraft) (*contract.CreateProjectResult, error) {
	if err := draft.Validate(); err != nil {
		return nil, &contract.SubmitError{Code: contract.ErrInvalidPayload, Message: err.Error(), Err: err}
	}
	body, err := json.Marshal(draft)
	if err != nil {
		return nil, err
	}

	out, err := s.runner.Run(ctx, api.RequestDescriptor{
		Endpoint: projectsEndpoint,
		Method:   http.MethodPost,
		Body:     body,
	})
	if err != nil {
		return nil, err
	}
	if out.Kind == session.OutcomeConflict {
		return &contract.CreateProjectResult{Notice: contract.ConflictNotice(out.Conflict)}, nil
	}

	result := &contract.CreateProjectResult{
		Created: true,
		Notice:  contract.Notice{Level: contract.NoticeInfo, Text: "Project created."},
	}
	if env, err := api.Decode[struct {
		Project *domain.Project `json:"project"`
	}](out.Body); err == nil {
		result.Project = env.Project
	}
	return result, nil
}
