package stub

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/domain"
	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/repository"
	"github.com/google/uuid"
)

// Tokens is an issued session, in the shape POST /auth/refresh returns.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type principal struct {
	user *domain.User // nil for anonymous callers
	dev  bool
}

type principalKey struct{}

func principalFrom(ctx context.Context) principal {
	p, _ := ctx.Value(principalKey{}).(principal)
	return p
}

// SeedUser creates a user and returns it.
func (s *Server) SeedUser(ctx context.Context, email string, role domain.Role) (*domain.User, error) {
	u := &domain.User{
		ID:        uuid.New().String(),
		Email:     email,
		Role:      role,
		Status:    domain.UserActive,
		CreatedAt: s.opts.Now().UTC(),
	}
	if err := s.users(s.db).Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// IssueSession logs userID in and returns a fresh token pair.
func (s *Server) IssueSession(ctx context.Context, userID string) (Tokens, error) {
	access, err := randomToken("at")
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := randomToken("rt")
	if err != nil {
		return Tokens{}, err
	}
	err = s.sessions(s.db).Create(ctx, &domain.AuthSession{
		AccessToken:  access,
		RefreshToken: refresh,
		UserID:       userID,
		ExpiresAt:    s.opts.Now().Add(s.opts.TokenTTL),
	})
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// ExpireSession makes an access token invalid from now on.
func (s *Server) ExpireSession(ctx context.Context, accessToken string) error {
	return s.sessions(s.db).ExpireAt(ctx, accessToken, s.opts.Now())
}

func randomToken(prefix string) (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return prefix + "_" + hex.EncodeToString(b), nil
}

var errInvalidJWT = errors.New("invalid jwt")

// authed resolves the caller before h runs. The gateway's wording is kept
// verbatim: clients detect session expiry from it.
func (s *Server) authed(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if header == "" || !ok || token == "" {
			s.writeError(w, r, http.StatusUnauthorized, errorBody{Message: "Missing authorization header"})
			return
		}

		p, err := s.resolve(r, token)
		switch {
		case errors.Is(err, errInvalidJWT):
			s.writeError(w, r, http.StatusUnauthorized, errorBody{Message: "Invalid JWT"})
			return
		case err != nil:
			s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
			return
		}

		if p.user != nil && p.user.Status != domain.UserActive {
			s.writeError(w, r, http.StatusForbidden, errorBody{Error: "Account " + string(p.user.Status)})
			return
		}
		h(w, r.WithContext(context.WithValue(r.Context(), principalKey{}, p)))
	}
}

func (s *Server) resolve(r *http.Request, token string) (principal, error) {
	ctx := r.Context()
	if s.opts.AnonKey != "" && token == s.opts.AnonKey {
		devToken := r.Header.Get(api.DevTokenHeader)
		if devToken == "" {
			return principal{}, nil
		}
		userID, ok := strings.CutPrefix(devToken, api.DevCredentialPrefix)
		if !s.opts.DevTokens || !ok {
			return principal{}, errInvalidJWT
		}
		u, err := s.users(s.db).GetByID(ctx, userID)
		if errors.Is(err, repository.ErrNotFound) {
			return principal{}, errInvalidJWT
		}
		if err != nil {
			return principal{}, err
		}
		return principal{user: u, dev: true}, nil
	}

	sess, err := s.sessions(s.db).GetByAccessToken(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return principal{}, errInvalidJWT
	}
	if err != nil {
		return principal{}, err
	}
	if sess.Expired(s.opts.Now()) {
		return principal{}, errInvalidJWT
	}
	u, err := s.users(s.db).GetByID(ctx, sess.UserID)
	if err != nil {
		return principal{}, err
	}
	return principal{user: u}, nil
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleRefresh rotates both tokens. The old access token is revoked.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := decodeBody(w, r, &req); err != nil || req.RefreshToken == "" {
		s.writeError(w, r, http.StatusBadRequest, errorBody{Error: "refresh_token is required"})
		return
	}

	sess, err := s.sessions(s.db).GetByRefreshToken(r.Context(), req.RefreshToken)
	if errors.Is(err, repository.ErrNotFound) || (err == nil && sess.Revoked) {
		s.writeError(w, r, http.StatusUnauthorized, errorBody{Message: "Invalid refresh token"})
		return
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}

	if err := s.sessions(s.db).Revoke(r.Context(), sess.AccessToken); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}
	tokens, err := s.IssueSession(r.Context(), sess.UserID)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}
	s.writeJSON(w, r, http.StatusOK, tokens)
}
