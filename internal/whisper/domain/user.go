package domain

import (
	"strings"
	"time"
	"unicode"
)

// MaxUsernameLength bounds usernames. They end up in URLs and token claims.
const MaxUsernameLength = 64

// User is a registered account. Username is the identity everything else
// refers to and never changes once created.
type User struct {
	Username     string
	PasswordHash string
	FirstName    string
	LastName     string
	Phone        string
	JoinedAt     time.Time
	LastLoginAt  time.Time
}

// Summary is the public view of a user nested in messages and listings.
func (u User) Summary() UserSummary {
	return UserSummary{
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     u.Phone,
	}
}

// UserSummary is the only user shape ever embedded in a message.
type UserSummary struct {
	Username  string
	FirstName string
	LastName  string
	Phone     string
}

// Registration is a request to create an account.
type Registration struct {
	Username  string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Validate checks every field is present. Values are not trimmed, but a
// value consisting only of whitespace counts as missing.
func (r Registration) Validate() error {
	missing := make([]string, 0, 5)
	for _, f := range []struct{ name, value string }{
		{"username", r.Username},
		{"password", r.Password},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"phone", r.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return Validationf("missing required fields: %s", strings.Join(missing, ", "))
	}
	return ValidateUsername(r.Username)
}

// ValidateUsername rejects usernames that cannot safely appear in a path.
func ValidateUsername(username string) error {
	if len(username) > MaxUsernameLength {
		return Validationf("username must be at most %d characters", MaxUsernameLength)
	}
	if strings.ContainsFunc(username, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsControl(r) || r == '/'
	}) {
		return Validationf("username must not contain whitespace or slashes")
	}
	return nil
}
