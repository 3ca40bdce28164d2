package domain_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/stretchr/testify/require"
)

func TestErrorKindMatching(t *testing.T) {
	err := fmt.Errorf("get message: %w", domain.NotFoundf("message %d not found", 7))

	require.ErrorIs(t, err, domain.ErrNotFound)
	require.NotErrorIs(t, err, domain.ErrForbidden)
	require.Equal(t, domain.KindNotFound, domain.KindOf(err))
	require.Equal(t, "get message: message 7 not found", err.Error())

	require.Equal(t, domain.ErrorKind(""), domain.KindOf(errors.New("boom")))
}

func TestRegistrationValidate(t *testing.T) {
	valid := domain.Registration{Username: "alice", Password: "pw", FirstName: "A", LastName: "L", Phone: "1"}

	tests := []struct {
		name    string
		mutate  func(*domain.Registration)
		wantMsg string
	}{
		{name: "valid", mutate: func(*domain.Registration) {}},
		{name: "missing password", mutate: func(r *domain.Registration) { r.Password = "" }, wantMsg: "missing required fields: password"},
		{name: "blank names", mutate: func(r *domain.Registration) { r.FirstName = "  "; r.LastName = "\t" }, wantMsg: "missing required fields: first_name, last_name"},
		{name: "whitespace username", mutate: func(r *domain.Registration) { r.Username = "al ice" }, wantMsg: "username must not contain whitespace or slashes"},
		{name: "slash username", mutate: func(r *domain.Registration) { r.Username = "al/ice" }, wantMsg: "username must not contain whitespace or slashes"},
		{name: "long username", mutate: func(r *domain.Registration) {
			r.Username = string(make([]byte, domain.MaxUsernameLength+1))
		}, wantMsg: "username must be at most 64 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := valid
			tt.mutate(&r)
			err := r.Validate()
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrValidation)
			require.EqualError(t, err, tt.wantMsg)
		})
	}
}

func TestNewMessageValidate(t *testing.T) {
	tests := []struct {
		name    string
		msg     domain.NewMessage
		wantMsg string
	}{
		{name: "valid", msg: domain.NewMessage{ToUsername: "bob", Body: "hi"}},
		{name: "padded body kept", msg: domain.NewMessage{ToUsername: "bob", Body: "  hi  "}},
		{name: "missing recipient", msg: domain.NewMessage{Body: "hi"}, wantMsg: "missing required fields: to_username"},
		{name: "missing body", msg: domain.NewMessage{ToUsername: "bob"}, wantMsg: "missing required fields: body"},
		{name: "empty", msg: domain.NewMessage{}, wantMsg: "missing required fields: to_username, body"},
		{name: "blank body", msg: domain.NewMessage{ToUsername: "bob", Body: " \n\t "}, wantMsg: "missing required fields: body"},
		{name: "blank recipient", msg: domain.NewMessage{ToUsername: "   ", Body: "hi"}, wantMsg: "missing required fields: to_username"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.msg.Validate()
			if tt.wantMsg == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, domain.ErrValidation)
			require.EqualError(t, err, tt.wantMsg)
		})
	}
}
