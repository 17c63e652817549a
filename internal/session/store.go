package session

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"golang.org/x/sync/singleflight"
)

var (
	// ErrRefreshFailed indicates the refresh collaborator produced no credential.
	ErrRefreshFailed = errors.New("session refresh failed")

	// ErrSessionExpired is matched by *SessionExpiredError.
	ErrSessionExpired = errors.New("session expired")
)

// Refresher is the external credential-refresh collaborator. An empty
// credential with a nil error also counts as a failed refresh.
type Refresher interface {
	Refresh(ctx context.Context) (api.Credential, error)
}

// RefresherFunc adapts a function to Refresher.
type RefresherFunc func(ctx context.Context) (api.Credential, error)

func (f RefresherFunc) Refresh(ctx context.Context) (api.Credential, error) { return f(ctx) }

// Store holds the session credential in memory. The value is replaced
// wholesale, so in-flight calls see either the old or the new credential.
type Store struct {
	current   atomic.Pointer[api.Credential]
	refresher Refresher
	group     singleflight.Group

	// reloginPending is set once the credential has been expired and reset
	// when a new one is stored.
	reloginPending atomic.Bool
}

// NewStore creates a Store seeded with initial. A nil refresher makes every
// refresh fail.
func NewStore(initial api.Credential, refresher Refresher) *Store {
	if refresher == nil {
		refresher = RefresherFunc(func(context.Context) (api.Credential, error) {
			return "", nil
		})
	}
	s := &Store{refresher: refresher}
	s.Replace(initial)
	return s
}

// Current returns the credential in use, or "" after Clear.
func (s *Store) Current() api.Credential {
	if p := s.current.Load(); p != nil {
		return *p
	}
	return ""
}

// Replace swaps in cred.
func (s *Store) Replace(cred api.Credential) {
	s.current.Store(&cred)
	s.reloginPending.Store(false)
}

// Clear discards the credential (logout or forced re-login).
func (s *Store) Clear() {
	s.current.Store(nil)
}

// Expire clears the credential after a failed refresh. It reports true only
// for the first caller since the last Replace, which owns the re-login.
func (s *Store) Expire() bool {
	s.current.Store(nil)
	return s.reloginPending.CompareAndSwap(false, true)
}

// Refresh obtains a credential to replace stale. If the store already holds
// a different credential, another caller refreshed first and that one is
// returned. Concurrent refreshes share one collaborator call, which runs to
// completion even if ctx is cancelled.
func (s *Store) Refresh(ctx context.Context, stale api.Credential) (api.Credential, error) {
	if cur := s.Current(); cur != "" && cur != stale {
		return cur, nil
	}

	v, err, _ := s.group.Do("refresh", func() (any, error) {
		cred, err := s.refresher.Refresh(context.WithoutCancel(ctx))
		if err != nil {
			return api.Credential(""), fmt.Errorf("%w: %w", ErrRefreshFailed, err)
		}
		if cred == "" {
			return api.Credential(""), ErrRefreshFailed
		}
		s.Replace(cred)
		return cred, nil
	})
	if err != nil {
		return "", err
	}
	return v.(api.Credential), nil
}
