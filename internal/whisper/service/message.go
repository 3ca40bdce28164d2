package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/policy"
	"github.com/aussiebroadwan/whisper/internal/whisper/store"
	"github.com/aussiebroadwan/whisper/pkg/slogx"
)

// MessageService applies the access policy in front of the message store.
// identity is always the username bound by the session guard.
type MessageService struct {
	Store store.Store

	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

func (s *MessageService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Send stores a message from identity. The recipient must exist.
func (s *MessageService) Send(ctx context.Context, identity string, msg domain.NewMessage) (domain.Message, error) {
	if err := msg.Validate(); err != nil {
		return domain.Message{}, err
	}
	if !policy.CanSend(identity, msg.ToUsername) {
		return domain.Message{}, domain.ErrMissingCredential
	}

	var created domain.Message
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		ok, err := tx.Users().UserExists(ctx, msg.ToUsername)
		if err != nil {
			return fmt.Errorf("check recipient: %w", err)
		}
		if !ok {
			return policy.UserNotFound(msg.ToUsername)
		}

		created, err = tx.Messages().CreateMessage(ctx, identity, msg.ToUsername, msg.Body, s.now())
		if errors.Is(err, store.ErrNotFound) {
			// The sender vanished between authentication and now
			return policy.UserNotFound(identity)
		}
		return err
	})
	if err != nil {
		return domain.Message{}, err
	}

	slogx.FromContext(ctx).Info("message sent", "id", created.ID, "to", created.ToUsername)
	return created, nil
}

// Get returns a message only to one of its two parties. Everyone else gets
// the same error as for an id that does not exist.
func (s *MessageService) Get(ctx context.Context, identity string, id int64) (domain.Message, error) {
	m, err := s.Store.Messages().GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Message{}, policy.MessageNotFound(id)
		}
		return domain.Message{}, fmt.Errorf("get message: %w", err)
	}
	if err := policy.AuthorizeRead(identity, m); err != nil {
		return domain.Message{}, err
	}
	return m, nil
}

// MarkRead stamps read_at the first time the recipient calls it. Later calls
// return the original timestamp.
func (s *MessageService) MarkRead(ctx context.Context, identity string, id int64) (domain.Message, error) {
	m, err := s.Store.Messages().GetMessage(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Message{}, policy.MessageNotFound(id)
		}
		return domain.Message{}, fmt.Errorf("get message: %w", err)
	}
	if err := policy.AuthorizeMarkRead(identity, m); err != nil {
		return domain.Message{}, err
	}

	read, err := s.Store.Messages().MarkRead(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Message{}, policy.MessageNotFound(id)
		}
		return domain.Message{}, fmt.Errorf("mark read: %w", err)
	}
	return read, nil
}

// ListTo returns the inbox of username.
func (s *MessageService) ListTo(ctx context.Context, username string) ([]domain.Message, error) {
	msgs, err := s.Store.Messages().ListTo(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list inbox: %w", err)
	}
	return msgs, nil
}

// ListFrom returns the outbox of username.
func (s *MessageService) ListFrom(ctx context.Context, username string) ([]domain.Message, error) {
	msgs, err := s.Store.Messages().ListFrom(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("list outbox: %w", err)
	}
	return msgs, nil
}
