package postgres_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/store"
	"github.com/aussiebroadwan/whisper/internal/whisper/store/drivers/postgres"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// startPostgres runs a throwaway PostgreSQL in Docker. Skipped in -short
// mode and wherever Docker is unavailable.
func startPostgres(t *testing.T) *postgres.Store {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping container test in -short mode")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "postgres:17-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "whisper",
			"POSTGRES_PASSWORD": "whisper",
			"POSTGRES_DB":       "whisper",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("docker unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://whisper:whisper@%s:%s/whisper?sslmode=disable", host, port.Port())
	s, err := postgres.NewStore(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	require.NoError(t, s.ApplyMigrations())
	return s
}

func TestPostgresStore(t *testing.T) {
	s := startPostgres(t)
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, u := range []string{"alice", "bob"} {
		require.NoError(t, s.Users().CreateUser(ctx, domain.User{
			Username: u, PasswordHash: "h", FirstName: u, LastName: "L", Phone: "1",
			JoinedAt: now, LastLoginAt: now,
		}))
	}
	err := s.Users().CreateUser(ctx, domain.User{Username: "alice", JoinedAt: now, LastLoginAt: now})
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	m, err := s.Messages().CreateMessage(ctx, "alice", "bob", "hi", now)
	require.NoError(t, err)
	require.Positive(t, m.ID)

	_, err = s.Messages().CreateMessage(ctx, "alice", "nobody", "hi", now)
	require.ErrorIs(t, err, store.ErrNotFound)

	got, err := s.Messages().GetMessage(ctx, m.ID)
	require.NoError(t, err)
	require.Equal(t, "alice", got.FromUser.FirstName)
	require.True(t, now.Equal(got.SentAt))

	read, err := s.Messages().MarkRead(ctx, m.ID, now.Add(time.Minute))
	require.NoError(t, err)
	again, err := s.Messages().MarkRead(ctx, m.ID, now.Add(time.Hour))
	require.NoError(t, err)
	require.True(t, read.ReadAt.Equal(*again.ReadAt))

	inbox, err := s.Messages().ListTo(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 1)

	require.NoError(t, s.Revocations().RevokeToken(ctx, domain.TokenRevocation{TokenID: "t1", Username: "alice", KeyID: "old", RevokedAt: now}))
	require.NoError(t, s.Revocations().RevokeToken(ctx, domain.TokenRevocation{TokenID: "t2", Username: "alice", KeyID: "new", RevokedAt: now}))
	n, err := s.Revocations().DeleteRevocationsExcept(ctx, []string{"new"})
	require.NoError(t, err)
	require.EqualValues(t, 1, n)

	revoked, err := s.Revocations().IsRevoked(ctx, "t2")
	require.NoError(t, err)
	require.True(t, revoked)
}
