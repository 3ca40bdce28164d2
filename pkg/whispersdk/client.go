package whispersdk

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// SDKClient is a client for the whisper service. It handles the
// unauthenticated endpoints and creates authenticated Sessions.
type SDKClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewSDKClient creates a new client for the service at baseURL.
func NewSDKClient(baseURL string) *SDKClient {
	return &SDKClient{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		HTTPClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Register creates an account and returns a session for it.
func (c *SDKClient) Register(ctx context.Context, req RegisterRequest) (*Session, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/register", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusCreated); err != nil {
		return nil, err
	}
	return c.NewSession(req.Username, tok.Token), nil
}

// Login exchanges a username and password for a fresh session. Every call
// issues a new token; earlier tokens stay valid.
func (c *SDKClient) Login(ctx context.Context, username, password string) (*Session, error) {
	body, err := jsonBody(LoginRequest{Username: username, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.doRequest(ctx, http.MethodPost, "/auth/login", body, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var tok TokenResponse
	if err := decodeJSON(resp, &tok, http.StatusOK); err != nil {
		return nil, err
	}
	return c.NewSession(username, tok.Token), nil
}

// NewSession wraps an existing token.
func (c *SDKClient) NewSession(username, token string) *Session {
	return &Session{client: c, username: username, token: token}
}
