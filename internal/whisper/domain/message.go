package domain

import (
	"strings"
	"time"
)

// Message is a private text message between exactly two users.
type Message struct {
	ID           int64
	FromUsername string
	ToUsername   string
	Body         string
	SentAt       time.Time

	// ReadAt is set once, by the recipient, and never changes afterwards.
	ReadAt *time.Time

	// Populated by reads that join the users table.
	FromUser UserSummary
	ToUser   UserSummary
}

// IsRead reports whether the recipient has read the message.
func (m Message) IsRead() bool { return m.ReadAt != nil }

// NewMessage is the input of a send.
type NewMessage struct {
	ToUsername string
	Body       string
}

// Validate makes sure both fields are present. As with registration, a
// value of only whitespace counts as missing; the body is stored as sent.
func (n NewMessage) Validate() error {
	var missing []string
	if strings.TrimSpace(n.ToUsername) == "" {
		missing = append(missing, "to_username")
	}
	if strings.TrimSpace(n.Body) == "" {
		missing = append(missing, "body")
	}
	if len(missing) > 0 {
		return Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return nil
}

// TokenRevocation records a session token that must no longer be accepted.
type TokenRevocation struct {
	TokenID   string
	Username  string
	KeyID     string
	RevokedAt time.Time
}
