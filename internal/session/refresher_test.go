package session

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/DavidJosephLai/casewhr-platform-sub006/internal/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPRefresher_RotatesRefreshToken(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{
		{body: json.RawMessage(`{"access_token":"sess-2","refresh_token":"rt-2"}`)},
		{body: json.RawMessage(`{"access_token":"sess-3"}`)},
	}}
	r := NewHTTPRefresher(caller, "rt-1")

	cred, err := r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.Credential("sess-2"), cred)

	cred, err = r.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, api.Credential("sess-3"), cred)

	require.Len(t, caller.seen, 2)
	assert.Equal(t, RefreshEndpoint, caller.seen[0].Endpoint)
	assert.Equal(t, http.MethodPost, caller.seen[0].Method)
	assert.Equal(t, api.Credential(""), caller.seen[0].Credential)
	assert.JSONEq(t, `{"refresh_token":"rt-1"}`, string(caller.seen[0].Body))
	assert.JSONEq(t, `{"refresh_token":"rt-2"}`, string(caller.seen[1].Body))
}

func TestHTTPRefresher_NoToken(t *testing.T) {
	caller := &scriptedCaller{}
	_, err := NewHTTPRefresher(caller, "").Refresh(context.Background())

	assert.Error(t, err)
	assert.Empty(t, caller.seen)
}

func TestHTTPRefresher_BackendRejects(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{
		{err: &api.Error{Kind: api.KindHTTPClient, Status: 400, Message: "invalid refresh token"}},
	}}
	_, err := NewHTTPRefresher(caller, "rt-1").Refresh(context.Background())

	assert.Equal(t, api.KindHTTPClient, api.KindOf(err))
}

func TestHTTPRefresher_MissingAccessToken(t *testing.T) {
	caller := &scriptedCaller{replies: []reply{{body: json.RawMessage(`{}`)}}}
	_, err := NewHTTPRefresher(caller, "rt-1").Refresh(context.Background())

	assert.Error(t, err)
}
