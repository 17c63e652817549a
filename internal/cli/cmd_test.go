package cli

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/cli/formatter"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/config"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/contract"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/milestone"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProjects struct {
	listed  []domain.Project
	created []domain.ProjectDraft
}

func (f *fakeProjects) List(context.Context) []domain.Project { return f.listed }

func (f *fakeProjects) Create(_ context.Context, d domain.ProjectDraft) (*contract.CreateProjectResult, error) {
	f.created = append(f.created, d)
	return &contract.CreateProjectResult{
		Project: &domain.Project{ID: "p-new", Title: d.Title},
		Created: true,
		Notice:  contract.Notice{Level: contract.NoticeInfo, Text: "Project created."},
	}, nil
}

type fakeProposals struct {
	got    []contract.SubmitProposalRequest
	result *contract.SubmitProposalResult
	err    error
}

func (f *fakeProposals) Submit(_ context.Context, req contract.SubmitProposalRequest) (*contract.SubmitProposalResult, error) {
	f.got = append(f.got, req)
	return f.result, f.err
}

type fakeAdmin struct {
	userID string
	status domain.UserStatus
}

func (f *fakeAdmin) UpdateUserStatus(_ context.Context, id string, s domain.UserStatus) (*contract.UpdateUserStatusResult, error) {
	f.userID, f.status = id, s
	return &contract.UpdateUserStatusResult{UserID: id, Status: s, Changed: true,
		Notice: contract.Notice{Level: contract.NoticeInfo, Text: "User " + id + " is now " + string(s) + "."}}, nil
}

type harness struct {
	projects  *fakeProjects
	proposals *fakeProposals
	admin     *fakeAdmin
	out, err  bytes.Buffer
	cfg       config.Config
}

func (h *harness) run(t *testing.T, args ...string) error {
	t.Helper()
	formatter.SetColor(false)
	t.Cleanup(func() { formatter.SetColor(true) })

	root := NewRootCmd(viper.New(), func(cfg config.Config) (*App, error) {
		h.cfg = cfg
		return &App{
			Projects:  h.projects,
			Proposals: h.proposals,
			Admin:     h.admin,
			Out:       &h.out,
			Err:       &h.err,
		}, nil
	})
	root.SetArgs(args)
	return root.ExecuteContext(context.Background())
}

func newCLIHarness() *harness {
	return &harness{
		projects:  &fakeProjects{},
		proposals: &fakeProposals{result: &contract.SubmitProposalResult{Outcome: contract.SubmitOutcomeSubmitted}},
		admin:     &fakeAdmin{},
	}
}

func TestProjectsList(t *testing.T) {
	h := newCLIHarness()
	h.projects.listed = []domain.Project{{ID: "0123456789", Title: "Logo design", Currency: domain.CurrencyTWD, Status: domain.ProjectOpen}}

	require.NoError(t, h.run(t, "projects", "list"))
	assert.Contains(t, h.out.String(), "Logo design")
	assert.Contains(t, h.out.String(), "01234567")
}

func TestProjectsCreate(t *testing.T) {
	h := newCLIHarness()

	require.NoError(t, h.run(t, "projects", "create", "--title", "Shop", "--budget-min", "100", "--budget-max", "200", "--currency", "USD"))
	require.Len(t, h.projects.created, 1)
	assert.Equal(t, domain.CurrencyUSD, h.projects.created[0].Currency)
	assert.Equal(t, 200.0, h.projects.created[0].BudgetMax)
	assert.Contains(t, h.out.String(), "Project created.")
}

func TestProposalSubmit_StructuredMilestones(t *testing.T) {
	h := newCLIHarness()
	h.proposals.result = &contract.SubmitProposalResult{
		Outcome: contract.SubmitOutcomeSubmitted,
		Notice:  contract.Notice{Level: contract.NoticeInfo, Text: "Proposal submitted."},
	}

	err := h.run(t, "proposal", "submit", "--project", "p1", "--cover-letter", "hello", "--budget", "1000",
		"--milestone", "Design:600:7", "--milestone", "Build")
	require.NoError(t, err)

	require.Len(t, h.proposals.got, 1)
	plan := h.proposals.got[0].Plan
	require.NotNil(t, plan)
	require.Len(t, plan.Milestones, 2)
	assert.Equal(t, 600.0, plan.Milestones[0].Amount)
	assert.Equal(t, 7, plan.Milestones[0].DurationDays)
	assert.Equal(t, 400.0, plan.Milestones[1].Amount, "second milestone takes the remaining budget")
	assert.Contains(t, h.out.String(), "Proposal submitted.")
	assert.Contains(t, h.out.String(), "TWD 0 remaining")
}

func TestProposalSubmit_DryRunDoesNotSubmit(t *testing.T) {
	h := newCLIHarness()

	require.NoError(t, h.run(t, "proposal", "submit", "--project", "p1", "--budget", "500", "--milestone", "All", "--dry-run"))
	assert.Empty(t, h.proposals.got)
	assert.Contains(t, h.out.String(), "All")
}

func TestProposalSubmit_AlreadySubmitted(t *testing.T) {
	h := newCLIHarness()
	h.proposals.result = &contract.SubmitProposalResult{
		Outcome: contract.SubmitOutcomeAlreadySubmitted,
		Notice:  contract.Notice{Level: contract.NoticeInfo, Text: "You have already submitted a proposal for this project"},
	}

	require.NoError(t, h.run(t, "proposal", "submit", "--project", "p1", "--cover-letter", "x", "--budget", "10", "--free-text", "all at once"))
	assert.Contains(t, h.out.String(), "ℹ You have already submitted a proposal for this project")
	assert.Empty(t, h.err.String())
}

func TestProposalSubmit_SessionExpiredCountdown(t *testing.T) {
	h := newCLIHarness()
	h.proposals.result = nil
	h.proposals.err = &session.SessionExpiredError{
		RedirectIn: 10 * time.Millisecond,
		Cause:      &api.Error{Kind: api.KindAuthExpired, Status: 401, Message: "Invalid JWT"},
	}

	err := h.run(t, "proposal", "submit", "--project", "p1", "--cover-letter", "x", "--budget", "10")
	var reported *ReportedError
	require.ErrorAs(t, err, &reported)
	assert.ErrorIs(t, err, session.ErrSessionExpired)
	assert.Contains(t, h.err.String(), "Your session has expired. Redirecting to login in 0 seconds...")
}

func TestProposalSubmit_MilestoneAndFreeTextConflict(t *testing.T) {
	h := newCLIHarness()

	err := h.run(t, "proposal", "submit", "--project", "p1", "--budget", "10", "--milestone", "A", "--free-text", "B")
	require.Error(t, err)
	assert.Empty(t, h.proposals.got)
}

func TestAdminUserStatus(t *testing.T) {
	h := newCLIHarness()

	require.NoError(t, h.run(t, "admin", "user-status", "u-42", "banned"))
	assert.Equal(t, "u-42", h.admin.userID)
	assert.Equal(t, domain.UserBanned, h.admin.status)
	assert.Contains(t, h.out.String(), "User u-42 is now banned.")
}

func TestGlobalFlagsOverrideConfig(t *testing.T) {
	h := newCLIHarness()

	require.NoError(t, h.run(t, "--base-url", "http://stub.test/", "--token", "tok", "projects", "list"))
	assert.Equal(t, "http://stub.test", h.cfg.BaseURL)
	assert.Equal(t, "tok", h.cfg.Token)
	assert.Equal(t, config.DefaultConfig().MaxRetries, h.cfg.MaxRetries)
}

func TestBuildPlan(t *testing.T) {
	plan, err := buildPlan(1000, []string{"Design:250", "Build:500:14", "Launch"})
	require.NoError(t, err)
	assert.Equal(t, 1000.0, milestone.Allocated(plan))
	assert.Equal(t, 250.0, plan.Milestones[2].Amount)
	assert.Equal(t, "Launch", plan.Milestones[2].Title)
	assert.Equal(t, 3, plan.Milestones[2].Order)

	_, err = buildPlan(1000, []string{"Everything", "More"})
	assert.ErrorIs(t, err, milestone.ErrBudgetExhausted)

	_, err = buildPlan(1000, []string{"Bad:abc"})
	assert.Error(t, err)

	_, err = buildPlan(1000, []string{":100"})
	assert.Error(t, err)
}

func TestFail_WrapsWithoutDoublePrinting(t *testing.T) {
	var errOut bytes.Buffer
	app := &App{Err: &errOut, Logger: discardLogger()}
	formatter.SetColor(false)
	defer formatter.SetColor(true)

	cause := &api.Error{Kind: api.KindHTTPServer, Status: 503}
	err := app.fail(context.Background(), cause)

	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, errOut.String(), "We retried a few times")
}
