package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
)

// Caller is the façade the orchestrator drives; *api.Client satisfies it.
type Caller interface {
	Call(ctx context.Context, req api.RequestDescriptor) (json.RawMessage, error)
}

// Relogin sends the user back through the login flow.
type Relogin interface {
	ForceLogin(reason string)
}

// ReloginFunc adapts a function to Relogin.
type ReloginFunc func(reason string)

func (f ReloginFunc) ForceLogin(reason string) { f(reason) }

// Scheduler runs f after d. The default is time.AfterFunc.
type Scheduler func(d time.Duration, f func())

// OutcomeKind distinguishes the non-error terminal outcomes.
type OutcomeKind string

const (
	OutcomeSuccess  OutcomeKind = "success"
	OutcomeConflict OutcomeKind = "conflict"
)

// Outcome is the result of a Run that did not fail. A conflict is an
// expected domain answer (for example "already submitted"), not an error.
type Outcome struct {
	Kind      OutcomeKind
	Body      json.RawMessage
	Conflict  *api.Error // set when Kind is OutcomeConflict
	Attempts  int
	Refreshed bool
}

// SessionExpiredError is returned when the session could not be refreshed.
// It wraps the AuthExpired *api.Error, so callers branching on the
// classified kind still see KindAuthExpired.
type SessionExpiredError struct {
	RedirectIn time.Duration
	Cause      *api.Error
	RefreshErr error
}

func (e *SessionExpiredError) Error() string {
	return fmt.Sprintf("session expired; redirecting to login in %s", e.RedirectIn)
}

func (e *SessionExpiredError) Unwrap() error { return e.Cause }

func (e *SessionExpiredError) Is(target error) bool { return target == ErrSessionExpired }

type state int

const (
	stateAttempt1 state = iota
	stateRefreshing
	stateAttempt2
	stateDone
)

func (s state) String() string {
	switch s {
	case stateAttempt1:
		return "attempt1"
	case stateRefreshing:
		return "refreshing"
	case stateAttempt2:
		return "attempt2"
	default:
		return "done"
	}
}

// run is the per-submission state. Nothing in it is shared between Runs.
type run struct {
	state    state
	cred     api.Credential
	calls    int
	outcome  *Outcome
	err      error
	authFail *api.Error
}

// Orchestrator wraps authenticated mutating calls with one
// refresh-and-retry on an expired session.
type Orchestrator struct {
	caller   Caller
	store    *Store
	relogin  Relogin
	delay    time.Duration
	schedule Scheduler
	logger   *slog.Logger
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithRedirectDelay sets the grace period before a forced re-login.
func WithRedirectDelay(d time.Duration) Option {
	return func(o *Orchestrator) { o.delay = d }
}

// WithScheduler replaces time.AfterFunc, mainly for tests.
func WithScheduler(s Scheduler) Option {
	return func(o *Orchestrator) { o.schedule = s }
}

// WithLogger sets the logger for state transitions.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// NewOrchestrator creates an Orchestrator. A nil relogin is a no-op.
func NewOrchestrator(caller Caller, store *Store, relogin Relogin, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		caller:  caller,
		store:   store,
		relogin: relogin,
		delay:   3 * time.Second,
		schedule: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.relogin == nil {
		o.relogin = ReloginFunc(func(string) {})
	}
	return o
}

// Run sends req with the current credential. req.Body is sent as-is on both
// attempts; Run never rebuilds it.
//
//   - success or business conflict: returned as an Outcome
//   - AuthExpired on the first attempt: refresh, then exactly one resend
//   - refresh failure: credential cleared, re-login scheduled,
//     *SessionExpiredError returned
//   - anything else: the *api.Error, unchanged
//
// Run makes at most two calls.
func (o *Orchestrator) Run(ctx context.Context, req api.RequestDescriptor) (*Outcome, error) {
	r := &run{state: stateAttempt1, cred: o.store.Current()}

	for r.state != stateDone {
		o.logger.Debug("orchestrator_state", "endpoint", req.Endpoint, "state", r.state.String(), "calls", r.calls)
		switch r.state {
		case stateAttempt1:
			o.attempt(ctx, req, r, stateRefreshing)
		case stateRefreshing:
			o.refresh(ctx, req, r)
		case stateAttempt2:
			o.attempt(ctx, req, r, stateDone)
		}
	}

	if r.err != nil {
		return nil, r.err
	}
	return r.outcome, nil
}

// attempt performs one call. onAuthExpired is where an AuthExpired failure
// leads: refreshing after the first attempt, terminal after the second.
func (o *Orchestrator) attempt(ctx context.Context, req api.RequestDescriptor, r *run, onAuthExpired state) {
	r.calls++
	body, err := o.caller.Call(ctx, req.WithCredential(r.cred))
	if err == nil {
		r.outcome = &Outcome{Kind: OutcomeSuccess, Body: body, Attempts: r.calls, Refreshed: r.calls > 1}
		r.state = stateDone
		return
	}

	ce := api.Classify(nil, err)
	switch {
	case ce.Kind == api.KindBusinessConflict:
		o.logger.Info("request_conflict",
			"endpoint", req.Endpoint, "attempt", r.calls, "status", ce.Status, "message", ce.Message)
		r.outcome = &Outcome{Kind: OutcomeConflict, Conflict: ce, Attempts: r.calls, Refreshed: r.calls > 1}
		r.state = stateDone
	case ce.Kind == api.KindAuthExpired && onAuthExpired == stateRefreshing:
		o.logger.Info("session_expired_refreshing", "endpoint", req.Endpoint)
		r.authFail = ce
		r.state = stateRefreshing
	default:
		r.err = ce
		r.state = stateDone
	}
}

func (o *Orchestrator) refresh(ctx context.Context, req api.RequestDescriptor, r *run) {
	cred, err := o.store.Refresh(ctx, r.cred)
	if err != nil {
		o.logger.Warn("session_refresh_failed", "endpoint", req.Endpoint, "error", err.Error(), "redirect_in", o.delay.String())
		if o.store.Expire() {
			o.schedule(o.delay, func() {
				o.relogin.ForceLogin("session expired")
			})
		}
		r.err = &SessionExpiredError{RedirectIn: o.delay, Cause: r.authFail, RefreshErr: err}
		r.state = stateDone
		return
	}
	r.cred = cred
	r.state = stateAttempt2
}
