package whispersdk

import (
	"time"

	"github.com/aussiebroadwan/whisper/pkg/jwtx"
)

// ============================================================================
// Auth Types
// ============================================================================

// RegisterRequest is the body of POST /auth/register. Every field is
// required.
type RegisterRequest struct {
	Username  string `json:"username"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	Token string `json:"token"`
}

// LogoutResponse confirms which user was signed out.
type LogoutResponse struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

// ============================================================================
// User Types
// ============================================================================

// UserSummary is the public view of a user, also nested in messages.
type UserSummary struct {
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
}

// User is a user profile with its activity timestamps.
type User struct {
	Username    string    `json:"username"`
	FirstName   string    `json:"first_name"`
	LastName    string    `json:"last_name"`
	Phone       string    `json:"phone"`
	JoinedAt    time.Time `json:"joined_at"`
	LastLoginAt time.Time `json:"last_login_at"`
}

// UsersResponse is returned by GET /users.
type UsersResponse struct {
	Users []UserSummary `json:"users"`
}

// UserResponse is returned by GET /users/{username}.
type UserResponse struct {
	User User `json:"user"`
}

// ============================================================================
// Message Types
// ============================================================================

// SendMessageRequest is the body of POST /messages. The sender is always
// the authenticated user.
type SendMessageRequest struct {
	ToUsername string `json:"to_username"`
	Body       string `json:"body"`
}

// SentMessage is the message as stored by a send.
type SentMessage struct {
	ID           int64     `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

// SendMessageResponse is returned by POST /messages.
type SendMessageResponse struct {
	Message SentMessage `json:"message"`
}

// MessageListItem is one inbox or outbox entry. Inbox entries carry
// FromUser, outbox entries carry ToUser.
type MessageListItem struct {
	ID       int64        `json:"id"`
	Body     string       `json:"body"`
	SentAt   time.Time    `json:"sent_at"`
	ReadAt   *time.Time   `json:"read_at"`
	FromUser *UserSummary `json:"from_user,omitempty"`
	ToUser   *UserSummary `json:"to_user,omitempty"`
}

// MessagesResponse is returned by the inbox and outbox endpoints.
type MessagesResponse struct {
	Messages []MessageListItem `json:"messages"`
}

// MessageDetail is a single message with both parties.
type MessageDetail struct {
	ID       int64       `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
	ToUser   UserSummary `json:"to_user"`
}

// MessageResponse is returned by GET /messages/{id}.
type MessageResponse struct {
	Message MessageDetail `json:"message"`
}

// ReadReceipt is the result of marking a message read.
type ReadReceipt struct {
	ID     int64     `json:"id"`
	ReadAt time.Time `json:"read_at"`
}

// MarkReadResponse is returned by POST /messages/{id}/read.
type MarkReadResponse struct {
	Message ReadReceipt `json:"message"`
}

// ============================================================================
// Health Types
// ============================================================================

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime,omitempty"`
	Version string `json:"version,omitempty"`

	// Checks is only set by /readyz.
	Checks *HealthChecks `json:"checks,omitempty"`
}

// HealthChecks reports the state of each dependency.
type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

// JWKSResponse is the public key set.
type JWKSResponse = jwtx.JWKS
