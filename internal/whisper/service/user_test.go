package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/stretchr/testify/require"
)

func TestRegister(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	token := f.register(t, "alice", "secret")

	claims, err := f.tokens.Validate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "alice", claims.Username)

	u, err := f.users.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.NotEqual(t, "secret", u.PasswordHash)
	require.True(t, f.clock.t.Equal(u.JoinedAt))
	require.Equal(t, u.JoinedAt, u.LastLoginAt)

	t.Run("duplicate", func(t *testing.T) {
		_, _, err := f.users.Register(ctx, domain.Registration{
			Username: "alice", Password: "x", FirstName: "A", LastName: "B", Phone: "1",
		})
		require.ErrorIs(t, err, domain.ErrDuplicateUser)
	})

	t.Run("missing fields", func(t *testing.T) {
		_, _, err := f.users.Register(ctx, domain.Registration{Username: "bob", Password: "x"})
		require.ErrorIs(t, err, domain.ErrValidation)

		_, err = f.users.GetUser(ctx, "bob")
		require.ErrorIs(t, err, domain.ErrNotFound, "nothing stored on validation failure")
	})
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	first := f.register(t, "alice", "secret")

	f.clock.Advance(time.Hour)
	second, err := f.users.Login(ctx, "alice", "secret")
	require.NoError(t, err)
	require.NotEqual(t, first, second, "each login issues a new token")

	c1, err := f.tokens.Validate(ctx, first)
	require.NoError(t, err)
	c2, err := f.tokens.Validate(ctx, second)
	require.NoError(t, err)
	require.NotEqual(t, c1.ID, c2.ID)

	u, err := f.users.GetUser(ctx, "alice")
	require.NoError(t, err)
	require.True(t, u.LastLoginAt.After(u.JoinedAt))

	t.Run("failures are indistinguishable", func(t *testing.T) {
		_, wrongPassword := f.users.Login(ctx, "alice", "nope")
		_, unknownUser := f.users.Login(ctx, "mallory", "secret")

		require.ErrorIs(t, wrongPassword, domain.ErrAuthenticationFailure)
		require.ErrorIs(t, unknownUser, domain.ErrAuthenticationFailure)
		require.Equal(t, wrongPassword.Error(), unknownUser.Error())
	})

	t.Run("failed login leaves last login alone", func(t *testing.T) {
		f.clock.Advance(time.Hour)
		_, _ = f.users.Login(ctx, "alice", "nope")
		after, err := f.users.GetUser(ctx, "alice")
		require.NoError(t, err)
		require.Equal(t, u.LastLoginAt, after.LastLoginAt)
	})

	t.Run("blank credentials", func(t *testing.T) {
		_, err := f.users.Login(ctx, "", "")
		require.ErrorIs(t, err, domain.ErrValidation)
	})
}

func TestLogoutRevokesOnlyThatToken(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	phone := f.register(t, "alice", "secret")
	laptop, err := f.users.Login(ctx, "alice", "secret")
	require.NoError(t, err)

	claims, err := f.tokens.Validate(ctx, phone)
	require.NoError(t, err)

	username, err := f.users.Logout(ctx, claims)
	require.NoError(t, err)
	require.Equal(t, "alice", username)

	_, err = f.tokens.Validate(ctx, phone)
	require.ErrorIs(t, err, domain.ErrInvalidToken)

	_, err = f.tokens.Validate(ctx, laptop)
	require.NoError(t, err)
}

func TestListUsers(t *testing.T) {
	f := newFixture(t)
	f.register(t, "carol", "pw")
	f.register(t, "alice", "pw")

	users, err := f.users.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)
	require.Equal(t, "alice", users[0].Username)
	require.Equal(t, "alice-first", users[0].FirstName)
}
