package service

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectService_List_Envelope(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusOK, `{"projects":[{"id":"p1","title":"Logo","status":"open"},{"id":"p2","title":"Shop","status":"in_progress"}]}`)
	}, nil)
	svc := NewProjectService(h.client, h.store, h.orch)

	projects := svc.List(context.Background())
	require.Len(t, projects, 2)
	assert.Equal(t, "Logo", projects[0].Title)
	assert.Equal(t, domain.ProjectInProgress, projects[1].Status)

	seen := h.backend.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, http.MethodGet, seen[0].Method)
	assert.Equal(t, "Bearer user-token-1", seen[0].Auth)
}

func TestProjectService_List_DegradesToEmpty(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"server error", http.StatusInternalServerError, `{"error":"boom"}`},
		{"html", http.StatusOK, `<html>gateway</html>`},
		{"missing envelope key", http.StatusOK, `{"items":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
				writeJSON(w, tt.status, tt.body)
			}, nil)
			svc := NewProjectService(h.client, h.store, h.orch)

			projects := svc.List(context.Background())
			assert.NotNil(t, projects)
			assert.Empty(t, projects)
		})
	}
}

func TestProjectService_Create(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusCreated, `{"project":{"id":"p7","title":"Landing page","currency":"TWD","status":"open"}}`)
	}, nil)
	svc := NewProjectService(h.client, h.store, h.orch)

	result, err := svc.Create(context.Background(), domain.ProjectDraft{
		Title:     "Landing page",
		BudgetMin: 5000,
		BudgetMax: 8000,
		Currency:  domain.CurrencyTWD,
	})
	require.NoError(t, err)
	assert.True(t, result.Created)
	require.NotNil(t, result.Project)
	assert.Equal(t, "p7", result.Project.ID)

	seen := h.backend.seen()
	require.Len(t, seen, 1)
	var sent domain.ProjectDraft
	require.NoError(t, json.Unmarshal(seen[0].Body, &sent))
	assert.Equal(t, 8000.0, sent.BudgetMax)
}

func TestProjectService_Create_Conflict(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusConflict, `{"error":{"message":"Project already exists","code":"already_exists"}}`)
	}, nil)
	svc := NewProjectService(h.client, h.store, h.orch)

	result, err := svc.Create(context.Background(), domain.ProjectDraft{Title: "Dup", Currency: domain.CurrencyUSD})
	require.NoError(t, err)
	assert.False(t, result.Created)
	assert.Equal(t, "Project already exists", result.Notice.Text)
}

func TestProjectService_Create_InvalidDraft(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusCreated, `{}`)
	}, nil)
	svc := NewProjectService(h.client, h.store, h.orch)

	_, err := svc.Create(context.Background(), domain.ProjectDraft{Title: "x", BudgetMin: 10, BudgetMax: 5, Currency: domain.CurrencyUSD})
	var se *contract.SubmitError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, contract.ErrInvalidPayload, se.Code)
	assert.Empty(t, h.backend.seen())
}
