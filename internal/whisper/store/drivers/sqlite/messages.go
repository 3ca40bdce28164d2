package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/store"
)

type messagesRepo struct {
	db dbtx
}

func (r *messagesRepo) CreateMessage(
	ctx context.Context,
	from, to, body string,
	sentAt time.Time,
) (domain.Message, error) {
	sentAt = sentAt.UTC()
	res, err := r.db.ExecContext(ctx, createMessage, from, to, body, sentAt)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", mapConstraint(err))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return domain.Message{}, err
	}
	return domain.Message{
		ID:           id,
		FromUsername: from,
		ToUsername:   to,
		Body:         body,
		SentAt:       sentAt,
	}, nil
}

func (r *messagesRepo) GetMessage(ctx context.Context, id int64) (domain.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, getMessage, id))
	if err != nil {
		return domain.Message{}, mapNotFound(err)
	}
	return m, nil
}

func (r *messagesRepo) MarkRead(ctx context.Context, id int64, at time.Time) (domain.Message, error) {
	res, err := r.db.ExecContext(ctx, markRead, at.UTC(), id)
	if err != nil {
		return domain.Message{}, fmt.Errorf("mark read: %w", err)
	}
	if err := requireAffected(res); err != nil {
		return domain.Message{}, err
	}

	var (
		m      domain.Message
		readAt sql.NullTime
	)
	if err := r.db.QueryRowContext(ctx, getReadState, id).Scan(&m.ID, &readAt); err != nil {
		return domain.Message{}, mapNotFound(err)
	}
	m.ReadAt = mapNullTimePtr(readAt)
	return m, nil
}

func (r *messagesRepo) ListTo(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, listTo, username)
}

func (r *messagesRepo) ListFrom(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, listFrom, username)
}

func (r *messagesRepo) list(ctx context.Context, query, username string) ([]domain.Message, error) {
	rows, err := r.db.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Message, 0)
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}
