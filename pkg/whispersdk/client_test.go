package whispersdk

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSDKClientTrimsSlash(t *testing.T) {
	t.Parallel()

	c := NewSDKClient("https://whisper.example.com/")
	require.Equal(t, "https://whisper.example.com/users", c.url("/users"))
}

func TestLoginAndAuthenticatedRequest(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret" {
			NewAPIError(http.StatusUnauthorized, ErrorCodeAuthFailed, "invalid username or password").WriteError(w)
			return
		}
		_ = json.NewEncoder(w).Encode(TokenResponse{Token: "tok-" + req.Username})
	})
	mux.HandleFunc("GET /users/{username}/to", func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "Bearer tok-alice", r.Header.Get("Authorization"))
		require.Equal(t, "alice", r.PathValue("username"))
		_ = json.NewEncoder(w).Encode(MessagesResponse{Messages: []MessageListItem{
			{ID: 1, Body: "hi", FromUser: &UserSummary{Username: "bob"}},
		}})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewSDKClient(srv.URL)
	ctx := context.Background()

	_, err := client.Login(ctx, "alice", "wrong")
	require.True(t, IsCode(err, ErrorCodeAuthFailed))
	require.Equal(t, http.StatusUnauthorized, StatusOf(err))

	session, err := client.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.Equal(t, "alice", session.Username())
	require.Equal(t, "tok-alice", session.Token())

	inbox, err := session.Inbox(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.Equal(t, "bob", inbox[0].FromUser.Username)
	require.Nil(t, inbox[0].ReadAt)
}

func TestParseErrorResponse(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		status   int
		body     string
		wantCode string
		wantDesc string
	}{
		{
			name:     "structured",
			status:   http.StatusNotFound,
			body:     `{"error":"not_found","error_description":"no such message: 7"}`,
			wantCode: ErrorCodeNotFound,
			wantDesc: "no such message: 7",
		},
		{
			name:     "plain text",
			status:   http.StatusBadGateway,
			body:     "upstream down",
			wantCode: ErrorCodeServerError,
			wantDesc: "HTTP 502: Bad Gateway",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseErrorResponse(&http.Response{StatusCode: tt.status}, []byte(tt.body))
			apiErr, ok := err.(*APIError)
			require.True(t, ok)
			require.Equal(t, tt.status, apiErr.StatusCode)
			require.Equal(t, tt.wantCode, apiErr.Code)
			require.Equal(t, tt.wantDesc, apiErr.Description)
		})
	}
}

func TestAPIErrorWriteError(t *testing.T) {
	t.Parallel()

	t.Run("unauthorized carries a challenge", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewAPIError(http.StatusUnauthorized, ErrorCodeInvalidToken, "invalid or revoked token").WriteError(rec)

		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Contains(t, rec.Header().Get("WWW-Authenticate"), `error="invalid_token"`)
		require.JSONEq(t, `{"error":"invalid_token","error_description":"invalid or revoked token"}`, rec.Body.String())
	})

	t.Run("forbidden", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewAPIError(http.StatusForbidden, ErrorCodeForbidden, "nope").WriteError(rec)

		require.Equal(t, http.StatusForbidden, rec.Code)
		require.Empty(t, rec.Header().Get("WWW-Authenticate"))
		require.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
	})
}
