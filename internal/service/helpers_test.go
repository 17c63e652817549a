package service

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/session"
)

// recordedRequest is what the fake backend saw.
type recordedRequest struct {
	Method string
	Path   string
	Auth   string
	Body   []byte
}

type fakeBackend struct {
	mu       sync.Mutex
	requests []recordedRequest
	handler  func(n int, w http.ResponseWriter, r *http.Request, body []byte)
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	b.mu.Lock()
	b.requests = append(b.requests, recordedRequest{
		Method: r.Method,
		Path:   r.URL.Path,
		Auth:   r.Header.Get("Authorization"),
		Body:   body,
	})
	n := len(b.requests)
	b.mu.Unlock()
	b.handler(n, w, r, body)
}

func (b *fakeBackend) seen() []recordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]recordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

type harness struct {
	backend *fakeBackend
	client  *api.Client
	store   *session.Store
	orch    *session.Orchestrator
	relogin []string
}

// newHarness wires a real client and orchestrator against an httptest
// server. refresh may be nil for a session that cannot be refreshed.
func newHarness(t *testing.T, handler func(n int, w http.ResponseWriter, r *http.Request, body []byte), refresh session.RefresherFunc) *harness {
	t.Helper()
	h := &harness{backend: &fakeBackend{handler: handler}}
	srv := httptest.NewServer(h.backend)
	t.Cleanup(srv.Close)

	h.client = api.NewClient(api.Options{
		BaseURL:    srv.URL,
		AnonKey:    "anon-key",
		Timeout:    2 * time.Second,
		MaxRetries: 0,
		Backoff:    time.Millisecond,
	})

	var refresher session.Refresher
	if refresh != nil {
		refresher = refresh
	}
	h.store = session.NewStore("user-token-1", refresher)
	h.orch = session.NewOrchestrator(h.client, h.store,
		session.ReloginFunc(func(reason string) { h.relogin = append(h.relogin, reason) }),
		session.WithScheduler(func(_ time.Duration, f func()) { f() }),
	)
	return h
}

func writeJSON(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

func staticRefresh(cred api.Credential) session.RefresherFunc {
	return func(context.Context) (api.Credential, error) { return cred, nil }
}
