package service

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/milestone"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func structuredRequest(t *testing.T) contract.SubmitProposalRequest {
	t.Helper()
	plan, err := milestone.Add(milestone.NewPlan(1000))
	require.NoError(t, err)
	plan, err = milestone.Update(plan, 0, milestone.FieldAmount, 600.0)
	require.NoError(t, err)
	plan, err = milestone.Update(plan, 0, milestone.FieldTitle, "Design")
	require.NoError(t, err)
	plan, err = milestone.Add(plan)
	require.NoError(t, err)
	plan, err = milestone.Update(plan, 1, milestone.FieldTitle, "Build")
	require.NoError(t, err)

	return contract.SubmitProposalRequest{
		ProjectID:      "proj-1",
		CoverLetter:    "I have shipped three similar marketplaces.",
		ProposedBudget: 1000,
		Currency:       domain.CurrencyTWD,
		Plan:           &plan,
	}
}

func TestProposalService_Submit_Success(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusCreated, `{"proposal":{"id":"prop-9","project_id":"proj-1","status":"pending"}}`)
	}, nil)
	svc := NewProposalService(h.orch)

	result, err := svc.Submit(context.Background(), structuredRequest(t))
	require.NoError(t, err)

	assert.Equal(t, contract.SubmitOutcomeSubmitted, result.Outcome)
	require.NotNil(t, result.Proposal)
	assert.Equal(t, "prop-9", result.Proposal.ID)
	assert.Equal(t, 1, result.Attempts)
	assert.False(t, result.Refreshed)

	seen := h.backend.seen()
	require.Len(t, seen, 1)
	assert.Equal(t, http.MethodPost, seen[0].Method)
	assert.Equal(t, "/proposals", seen[0].Path)
	assert.Equal(t, "Bearer user-token-1", seen[0].Auth)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(seen[0].Body, &sent))
	assert.Equal(t, "proj-1", sent["projectId"])
	assert.Equal(t, true, sent["useStructuredMilestones"])
	assert.Len(t, sent["milestones"], 2)
	assert.NotContains(t, sent, "freeTextMilestones")
}

func TestProposalService_Submit_RefreshReplaysIdenticalBody(t *testing.T) {
	h := newHarness(t, func(n int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		if n == 1 {
			writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid JWT"}`)
			return
		}
		writeJSON(w, http.StatusCreated, `{"proposal":{"id":"prop-2"}}`)
	}, staticRefresh("user-token-2"))
	svc := NewProposalService(h.orch)

	result, err := svc.Submit(context.Background(), structuredRequest(t))
	require.NoError(t, err)
	assert.Equal(t, contract.SubmitOutcomeSubmitted, result.Outcome)
	assert.Equal(t, 2, result.Attempts)
	assert.True(t, result.Refreshed)

	seen := h.backend.seen()
	require.Len(t, seen, 2)
	assert.Equal(t, "Bearer user-token-1", seen[0].Auth)
	assert.Equal(t, "Bearer user-token-2", seen[1].Auth)
	if diff := cmp.Diff(seen[0].Body, seen[1].Body); diff != "" {
		t.Fatalf("replayed body differs (-first +second):\n%s", diff)
	}
	assert.Equal(t, api.Credential("user-token-2"), h.store.Current())
}

func TestProposalService_Submit_DuplicateIsAlreadySubmitted(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusConflict, `{"error":"You have already submitted a proposal for this project"}`)
	}, nil)
	svc := NewProposalService(h.orch)

	result, err := svc.Submit(context.Background(), structuredRequest(t))
	require.NoError(t, err)

	assert.Equal(t, contract.SubmitOutcomeAlreadySubmitted, result.Outcome)
	assert.Equal(t, contract.NoticeInfo, result.Notice.Level)
	assert.Equal(t, "You have already submitted a proposal for this project", result.Notice.Text)
	assert.Nil(t, result.Proposal)
	assert.Len(t, h.backend.seen(), 1, "a conflict is never retried")
}

func TestProposalService_Submit_RefreshFailureExpiresSession(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusUnauthorized, `{"message":"Invalid JWT"}`)
	}, nil)
	svc := NewProposalService(h.orch)

	result, err := svc.Submit(context.Background(), structuredRequest(t))
	assert.Nil(t, result)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Equal(t, api.KindAuthExpired, api.KindOf(err))
	assert.Equal(t, []string{"session expired"}, h.relogin)
	assert.Equal(t, api.Credential(""), h.store.Current())
	assert.Len(t, h.backend.seen(), 1)
}

func TestProposalService_Submit_RejectedLocally(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusCreated, `{}`)
	}, nil)
	svc := NewProposalService(h.orch)

	overBudget := structuredRequest(t)
	plan, err := milestone.Update(*overBudget.Plan, 1, milestone.FieldAmount, 900.0)
	require.NoError(t, err)
	overBudget.Plan = &plan

	mismatch := structuredRequest(t)
	mismatch.ProposedBudget = 1200

	empty := structuredRequest(t)
	emptyPlan := milestone.NewPlan(1000)
	empty.Plan = &emptyPlan

	noLetter := structuredRequest(t)
	noLetter.CoverLetter = "  "

	tests := []struct {
		name string
		req  contract.SubmitProposalRequest
		code contract.SubmitErrorCode
	}{
		{"over budget", overBudget, contract.ErrBudgetExceeded},
		{"total mismatch", mismatch, contract.ErrBudgetMismatch},
		{"empty plan", empty, contract.ErrEmptyMilestones},
		{"missing cover letter", noLetter, contract.ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Submit(context.Background(), tt.req)
			var se *contract.SubmitError
			require.ErrorAs(t, err, &se)
			assert.Equal(t, tt.code, se.Code)
		})
	}
	assert.Empty(t, h.backend.seen(), "invalid submissions never reach the network")
}

func TestBuildProposalPayload_FreeText(t *testing.T) {
	body, err := BuildProposalPayload(contract.SubmitProposalRequest{
		ProjectID:          "proj-3",
		CoverLetter:        "Happy to help.",
		ProposedBudget:     250.5,
		Currency:           domain.CurrencyUSD,
		FreeTextMilestones: "  50% upfront, 50% on delivery ",
	})
	require.NoError(t, err)

	want := map[string]any{
		"projectId":               "proj-3",
		"coverLetter":             "Happy to help.",
		"proposedBudget":          250.5,
		"currency":                "USD",
		"useStructuredMilestones": false,
		"freeTextMilestones":      "50% upfront, 50% on delivery",
	}
	var got map[string]any
	require.NoError(t, json.Unmarshal(body, &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestBuildProposalPayload_Deterministic(t *testing.T) {
	req := structuredRequest(t)
	first, err := BuildProposalPayload(req)
	require.NoError(t, err)
	second, err := BuildProposalPayload(req)
	require.NoError(t, err)
	assert.True(t, bytes.Equal(first, second))
}

func TestProposalService_ObserverLogsConflictAtInfo(t *testing.T) {
	h := newHarness(t, func(_ int, w http.ResponseWriter, _ *http.Request, _ []byte) {
		writeJSON(w, http.StatusConflict, `{"error":"duplicate proposal","code":"duplicate_proposal"}`)
	}, nil)
	var buf bytes.Buffer
	svc := NewProposalService(h.orch, NewLogUseCaseObserver(&buf))

	_, err := svc.Submit(context.Background(), structuredRequest(t))
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, "level=INFO")
	assert.Contains(t, out, "use_case=proposal.submit")
	assert.Contains(t, out, "outcome=already_submitted")
	assert.False(t, strings.Contains(out, "level=ERROR"))
}
