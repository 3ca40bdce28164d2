package policy_test

import (
	"testing"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/policy"
	"github.com/stretchr/testify/require"
)

func TestPolicyTruthTable(t *testing.T) {
	m := domain.Message{ID: 1, FromUsername: "alice", ToUsername: "bob"}

	tests := []struct {
		identity     string
		wantRead     bool
		wantMarkRead bool
	}{
		{identity: "alice", wantRead: true, wantMarkRead: false},
		{identity: "bob", wantRead: true, wantMarkRead: true},
		{identity: "carol", wantRead: false, wantMarkRead: false},
		{identity: "", wantRead: false, wantMarkRead: false},
	}

	for _, tt := range tests {
		t.Run("identity="+tt.identity, func(t *testing.T) {
			require.Equal(t, tt.wantRead, policy.CanRead(tt.identity, m))
			require.Equal(t, tt.wantMarkRead, policy.CanMarkRead(tt.identity, m))
		})
	}
}

func TestSelfMessage(t *testing.T) {
	m := domain.Message{ID: 2, FromUsername: "alice", ToUsername: "alice"}
	require.True(t, policy.CanSend("alice", "alice"))
	require.True(t, policy.CanRead("alice", m))
	require.True(t, policy.CanMarkRead("alice", m))
}

func TestAuthorizeErrors(t *testing.T) {
	m := domain.Message{ID: 3, FromUsername: "alice", ToUsername: "bob"}

	// An outsider sees exactly what a missing id looks like
	err := policy.AuthorizeRead("carol", m)
	require.ErrorIs(t, err, domain.ErrNotFound)
	require.Equal(t, policy.MessageNotFound(3).Error(), err.Error())

	err = policy.AuthorizeMarkRead("alice", m)
	require.ErrorIs(t, err, domain.ErrForbidden)
	require.EqualError(t, err, policy.MarkReadDenied)

	require.NoError(t, policy.AuthorizeRead("alice", m))
	require.NoError(t, policy.AuthorizeMarkRead("bob", m))
}
