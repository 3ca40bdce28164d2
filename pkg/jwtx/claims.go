package jwtx

import (
	"strings"
	"time"

	"github.com/aussiebroadwan/whisper/pkg/idx"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the session token claims. A session token asserts a username
// and when it was issued; the jti lets a single token be revoked. There is
// deliberately no exp claim, a token stays valid until its key goes away or
// it is revoked.
type Claims struct {
	jwt.RegisteredClaims

	// Username of the authenticated user
	Username string `json:"username"`

	// KeyID is the kid header of the verified token. It is not a claim.
	KeyID string `json:"-"`
}

// NewSessionClaims builds the claims for a freshly issued session token.
func NewSessionClaims(username, issuer string, now time.Time) Claims {
	return Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:   issuer,
			IssuedAt: jwt.NewNumericDate(now),
			ID:       idx.NewAt(now).String(),
		},
		Username: username,
	}
}

// IssuedAtTime returns the iat claim or the zero time when absent.
func (c *Claims) IssuedAtTime() time.Time {
	if c.IssuedAt == nil {
		return time.Time{}
	}
	return c.IssuedAt.Time
}

// ValidateIssuer checks if the issuer matches expected value.
func (c *Claims) ValidateIssuer(expected string) error {
	if expected == "" {
		return nil
	}
	if c.Issuer != expected {
		return ErrIssuer
	}
	return nil
}

// ValidateSession makes sure the claims carry everything a session needs.
func (c *Claims) ValidateSession() error {
	if strings.TrimSpace(c.Username) == "" {
		return ErrMissingUsername
	}
	if c.ID == "" {
		return ErrInvalidClaim
	}
	return nil
}
