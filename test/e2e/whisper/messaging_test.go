package whisper_test

import (
	"net/http"
	"testing"

	"github.com/aussiebroadwan/whisper/pkg/whispersdk"
	"github.com/stretchr/testify/require"
)

func TestMessagingScenario(t *testing.T) {
	client := setupContainer(t, relaxedLimits)
	ctx := t.Context()

	alice := registerUser(t, client, "alice")
	bob := registerUser(t, client, "bob")
	carol := registerUser(t, client, "carol")

	sent, err := alice.SendMessage(ctx, "bob", "lunch?")
	require.NoError(t, err)

	got, err := bob.GetMessage(ctx, sent.ID)
	require.NoError(t, err)
	require.Equal(t, "lunch?", got.Body)
	require.Nil(t, got.ReadAt)

	_, err = carol.GetMessage(ctx, sent.ID)
	requireCode(t, err, http.StatusNotFound, whispersdk.ErrorCodeNotFound)

	_, err = alice.MarkRead(ctx, sent.ID)
	requireCode(t, err, http.StatusForbidden, whispersdk.ErrorCodeForbidden)

	first, err := bob.MarkRead(ctx, sent.ID)
	require.NoError(t, err)
	second, err := bob.MarkRead(ctx, sent.ID)
	require.NoError(t, err)
	require.True(t, first.ReadAt.Equal(second.ReadAt))

	inbox, err := bob.Inbox(ctx)
	require.NoError(t, err)
	require.Len(t, inbox, 1)
	require.NotNil(t, inbox[0].ReadAt)

	_, err = carol.ListMessagesTo(ctx, "bob")
	requireCode(t, err, http.StatusForbidden, whispersdk.ErrorCodeForbidden)
}

func TestLogoutAndLogin(t *testing.T) {
	client := setupContainer(t, relaxedLimits)
	ctx := t.Context()

	alice := registerUser(t, client, "alice")
	stale := client.NewSession("alice", alice.Token())

	_, err := alice.Logout(ctx)
	require.NoError(t, err)

	_, err = stale.Inbox(ctx)
	requireCode(t, err, http.StatusUnauthorized, whispersdk.ErrorCodeInvalidToken)

	_, err = client.Login(ctx, "alice", "wrong")
	requireCode(t, err, http.StatusUnauthorized, whispersdk.ErrorCodeAuthFailed)

	fresh, err := client.Login(ctx, "alice", "alice-password")
	require.NoError(t, err)
	_, err = fresh.Inbox(ctx)
	require.NoError(t, err)
}
