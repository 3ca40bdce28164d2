package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/policy"
	"github.com/stretchr/testify/require"
)

func TestMessageLifecycle(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, u := range []string{"alice", "bob", "carol"} {
		f.register(t, u, "pw")
	}

	sent, err := f.messages.Send(ctx, "alice", domain.NewMessage{ToUsername: "bob", Body: "hi"})
	require.NoError(t, err)
	require.Equal(t, "alice", sent.FromUsername)
	require.Positive(t, sent.ID)
	require.Nil(t, sent.ReadAt)

	t.Run("both parties can read", func(t *testing.T) {
		for _, who := range []string{"alice", "bob"} {
			m, err := f.messages.Get(ctx, who, sent.ID)
			require.NoError(t, err)
			require.Equal(t, "hi", m.Body)
			require.Equal(t, "bob-first", m.ToUser.FirstName)
		}
	})

	t.Run("outsider sees not found", func(t *testing.T) {
		_, outsider := f.messages.Get(ctx, "carol", sent.ID)
		_, missing := f.messages.Get(ctx, "carol", 424242)
		require.ErrorIs(t, outsider, domain.ErrNotFound)
		require.Equal(t, policy.MessageNotFound(sent.ID).Error(), outsider.Error())
		require.ErrorIs(t, missing, domain.ErrNotFound)
	})

	t.Run("only the recipient marks read", func(t *testing.T) {
		_, err := f.messages.MarkRead(ctx, "alice", sent.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)
		require.EqualError(t, err, policy.MarkReadDenied)

		_, err = f.messages.MarkRead(ctx, "carol", sent.ID)
		require.ErrorIs(t, err, domain.ErrForbidden)

		m, err := f.messages.Get(ctx, "bob", sent.ID)
		require.NoError(t, err)
		require.Nil(t, m.ReadAt, "failed attempts change nothing")
	})

	t.Run("mark read is idempotent", func(t *testing.T) {
		first, err := f.messages.MarkRead(ctx, "bob", sent.ID)
		require.NoError(t, err)
		require.NotNil(t, first.ReadAt)

		f.clock.Advance(time.Hour)
		second, err := f.messages.MarkRead(ctx, "bob", sent.ID)
		require.NoError(t, err)
		require.Equal(t, *first.ReadAt, *second.ReadAt)

		_, err = f.messages.MarkRead(ctx, "bob", 424242)
		require.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSendValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.register(t, "alice", "pw")

	_, err := f.messages.Send(ctx, "alice", domain.NewMessage{ToUsername: "nobody", Body: "hi"})
	require.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.messages.Send(ctx, "alice", domain.NewMessage{ToUsername: "alice"})
	require.ErrorIs(t, err, domain.ErrValidation)

	self, err := f.messages.Send(ctx, "alice", domain.NewMessage{ToUsername: "alice", Body: "note to self"})
	require.NoError(t, err)
	require.Equal(t, "alice", self.ToUsername)
}

func TestInboxAndOutbox(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	for _, u := range []string{"alice", "bob", "carol"} {
		f.register(t, u, "pw")
	}

	for _, m := range []struct{ from, to, body string }{
		{"alice", "bob", "one"},
		{"carol", "bob", "two"},
		{"bob", "alice", "three"},
	} {
		_, err := f.messages.Send(ctx, m.from, domain.NewMessage{ToUsername: m.to, Body: m.body})
		require.NoError(t, err)
	}

	inbox, err := f.messages.ListTo(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, inbox, 2)
	require.Equal(t, "one", inbox[0].Body)
	require.Equal(t, "carol", inbox[1].FromUser.Username)

	outbox, err := f.messages.ListFrom(ctx, "bob")
	require.NoError(t, err)
	require.Len(t, outbox, 1)
	require.Equal(t, "alice", outbox[0].ToUser.Username)
}
