package session

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
)

// RefreshEndpoint is the backend route that trades a refresh token for a
// new access token.
const RefreshEndpoint = "/auth/refresh"

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// HTTPRefresher implements Refresher against the backend's refresh route.
// It rotates the refresh token when the backend issues a new one.
type HTTPRefresher struct {
	caller Caller

	mu           sync.Mutex
	refreshToken string
}

// NewHTTPRefresher creates a refresher that calls the backend through caller.
func NewHTTPRefresher(caller Caller, refreshToken string) *HTTPRefresher {
	return &HTTPRefresher{caller: caller, refreshToken: refreshToken}
}

func (r *HTTPRefresher) Refresh(ctx context.Context) (api.Credential, error) {
	r.mu.Lock()
	token := r.refreshToken
	r.mu.Unlock()

	if token == "" {
		return "", fmt.Errorf("no refresh token available")
	}

	body, err := json.Marshal(refreshRequest{RefreshToken: token})
	if err != nil {
		return "", fmt.Errorf("marshaling refresh request: %w", err)
	}

	// Retries stay with the transport; the refresh itself is one logical call.
	raw, err := r.caller.Call(ctx, api.RequestDescriptor{
		Endpoint: RefreshEndpoint,
		Method:   http.MethodPost,
		Body:     body,
	})
	if err != nil {
		return "", err
	}

	resp, err := api.Decode[refreshResponse](raw)
	if err != nil {
		return "", err
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("refresh response carried no access token")
	}

	if resp.RefreshToken != "" {
		r.mu.Lock()
		r.refreshToken = resp.RefreshToken
		r.mu.Unlock()
	}
	return api.Credential(resp.AccessToken), nil
}
