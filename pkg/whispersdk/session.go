package whispersdk

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// Session is an authenticated client bound to one user and one token.
type Session struct {
	client   *SDKClient
	username string

	mu    sync.RWMutex
	token string
}

// Username returns the user this session acts as.
func (s *Session) Username() string { return s.username }

// Token returns the bearer token, empty after a successful Logout.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Logout revokes the session token on the server. The session is unusable
// afterwards; other sessions of the same user are unaffected.
func (s *Session) Logout(ctx context.Context) (*LogoutResponse, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/auth/logout", nil, nil)
	if err != nil {
		return nil, err
	}

	var out LogoutResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
	return &out, nil
}

// ListUsers returns the user directory.
func (s *Session) ListUsers(ctx context.Context) ([]UserSummary, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users", nil, nil)
	if err != nil {
		return nil, err
	}

	var out UsersResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Users, nil
}

// GetUser returns one user's profile.
func (s *Session) GetUser(ctx context.Context, username string) (*User, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/users/"+url.PathEscape(username), nil, nil)
	if err != nil {
		return nil, err
	}

	var out UserResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.User, nil
}

// Inbox lists messages sent to the session user, oldest first.
func (s *Session) Inbox(ctx context.Context) ([]MessageListItem, error) {
	return s.listMessages(ctx, s.username, "to")
}

// Outbox lists messages sent by the session user, oldest first.
func (s *Session) Outbox(ctx context.Context) ([]MessageListItem, error) {
	return s.listMessages(ctx, s.username, "from")
}

// ListMessagesTo lists the inbox of username. The server only allows this
// for the session user; it exists so callers can observe that.
func (s *Session) ListMessagesTo(ctx context.Context, username string) ([]MessageListItem, error) {
	return s.listMessages(ctx, username, "to")
}

// ListMessagesFrom lists the outbox of username, with the same restriction
// as ListMessagesTo.
func (s *Session) ListMessagesFrom(ctx context.Context, username string) ([]MessageListItem, error) {
	return s.listMessages(ctx, username, "from")
}

func (s *Session) listMessages(ctx context.Context, username, box string) ([]MessageListItem, error) {
	path := fmt.Sprintf("/users/%s/%s", url.PathEscape(username), box)
	resp, err := s.doAuthRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out MessagesResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return out.Messages, nil
}

// SendMessage sends body to the user named to.
func (s *Session) SendMessage(ctx context.Context, to, body string) (*SentMessage, error) {
	reqBody, err := jsonBody(SendMessageRequest{ToUsername: to, Body: body})
	if err != nil {
		return nil, err
	}

	resp, err := s.doAuthRequest(ctx, http.MethodPost, "/messages", reqBody, jsonHeaders)
	if err != nil {
		return nil, err
	}

	var out SendMessageResponse
	if err := decodeJSON(resp, &out, http.StatusCreated); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// GetMessage fetches a message the session user sent or received.
func (s *Session) GetMessage(ctx context.Context, id int64) (*MessageDetail, error) {
	resp, err := s.doAuthRequest(ctx, http.MethodGet, "/messages/"+strconv.FormatInt(id, 10), nil, nil)
	if err != nil {
		return nil, err
	}

	var out MessageResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Message, nil
}

// MarkRead marks a received message as read. Repeated calls return the
// original read time.
func (s *Session) MarkRead(ctx context.Context, id int64) (*ReadReceipt, error) {
	path := "/messages/" + strconv.FormatInt(id, 10) + "/read"
	resp, err := s.doAuthRequest(ctx, http.MethodPost, path, nil, nil)
	if err != nil {
		return nil, err
	}

	var out MarkReadResponse
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		return nil, err
	}
	return &out.Message, nil
}
