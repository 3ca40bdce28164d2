package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/policy"
	"github.com/aussiebroadwan/whisper/internal/whisper/store"
	"github.com/aussiebroadwan/whisper/pkg/cryptox"
	"github.com/aussiebroadwan/whisper/pkg/jwtx"
	"github.com/aussiebroadwan/whisper/pkg/slogx"
)

// UserService is the credential store plus registration, login and logout.
type UserService struct {
	Store  store.Store
	Tokens *TokenService

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *UserService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Register creates the account and signs the new user in.
func (s *UserService) Register(ctx context.Context, reg domain.Registration) (string, domain.User, error) {
	if err := reg.Validate(); err != nil {
		return "", domain.User{}, err
	}

	hash, err := cryptox.HashPassword(reg.Password)
	if err != nil {
		return "", domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	user := domain.User{
		Username:     reg.Username,
		PasswordHash: hash,
		FirstName:    reg.FirstName,
		LastName:     reg.LastName,
		Phone:        reg.Phone,
		JoinedAt:     now,
		LastLoginAt:  now,
	}

	if err := s.Store.Users().CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return "", domain.User{}, domain.ErrDuplicateUser
		}
		return "", domain.User{}, fmt.Errorf("create user: %w", err)
	}

	token, _, err := s.Tokens.Issue(ctx, user.Username)
	if err != nil {
		return "", domain.User{}, err
	}

	slogx.FromContext(ctx).Info("user registered", "username", user.Username)
	return token, user, nil
}

// Verify checks a username and password pair. An unknown user and a wrong
// password give the same error, and both cost one password hash.
func (s *UserService) Verify(ctx context.Context, username, password string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	switch {
	case errors.Is(err, store.ErrNotFound):
		_ = cryptox.VerifyPassword(password, cryptox.DummyHash())
		return domain.User{}, domain.ErrAuthenticationFailure
	case err != nil:
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}

	if err := cryptox.VerifyPassword(password, user.PasswordHash); err != nil {
		if !errors.Is(err, cryptox.ErrPasswordMismatch) {
			slogx.FromContext(ctx).Error("stored password hash unusable", "username", username, "err", err)
		}
		return domain.User{}, domain.ErrAuthenticationFailure
	}
	return user, nil
}

// Login verifies the credentials, records the login and issues a new token.
func (s *UserService) Login(ctx context.Context, username, password string) (string, error) {
	if username == "" || password == "" {
		return "", domain.Validationf("username and password are required")
	}

	user, err := s.Verify(ctx, username, password)
	if err != nil {
		slogx.FromContext(ctx).Info("login failed", "username", username)
		return "", err
	}

	if err := s.TouchLastLogin(ctx, user.Username); err != nil {
		return "", err
	}

	token, _, err := s.Tokens.Issue(ctx, user.Username)
	if err != nil {
		return "", err
	}
	return token, nil
}

// TouchLastLogin sets last_login_at to now.
func (s *UserService) TouchLastLogin(ctx context.Context, username string) error {
	if err := s.Store.Users().UpdateLastLogin(ctx, username, s.now()); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return policy.UserNotFound(username)
		}
		return fmt.Errorf("update last login: %w", err)
	}
	return nil
}

// Logout revokes the presented token and reports who was signed out.
func (s *UserService) Logout(ctx context.Context, claims jwtx.Claims) (string, error) {
	user, err := s.GetUser(ctx, claims.Username)
	if err != nil {
		return "", err
	}
	if err := s.Tokens.Revoke(ctx, claims); err != nil {
		return "", fmt.Errorf("revoke token: %w", err)
	}

	slogx.FromContext(ctx).Info("user logged out", "username", user.Username, "jti", claims.ID)
	return user.Username, nil
}

// GetUser returns a user by username.
func (s *UserService) GetUser(ctx context.Context, username string) (domain.User, error) {
	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.User{}, policy.UserNotFound(username)
		}
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// ListUsers returns every user's public summary.
func (s *UserService) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	users, err := s.Store.Users().ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}
