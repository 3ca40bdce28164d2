package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
	"github.com/aussiebroadwan/whisper/internal/whisper/store"
)

const selectMessage = `
SELECT m.id, m.from_username, m.to_username, m.body, m.sent_at, m.read_at,
       f.first_name, f.last_name, f.phone,
       t.first_name, t.last_name, t.phone
FROM messages m
JOIN users f ON f.username = m.from_username
JOIN users t ON t.username = m.to_username`

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO users (username, password_hash, first_name, last_name, phone, joined_at, last_login_at)
VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.JoinedAt.UTC(), u.LastLoginAt.UTC())
	if err != nil {
		return fmt.Errorf("create user: %w", mapConstraint(err))
	}
	return nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, `
SELECT username, password_hash, first_name, last_name, phone, joined_at, last_login_at
FROM users WHERE username = $1`, username).Scan(
		&u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.JoinedAt, &u.LastLoginAt)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.JoinedAt = u.JoinedAt.UTC()
	u.LastLoginAt = u.LastLoginAt.UTC()
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT username, first_name, last_name, phone FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UserSummary, 0)
	for rows.Next() {
		var s domain.UserSummary
		if err := rows.Scan(&s.Username, &s.FirstName, &s.LastName, &s.Phone); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *usersRepo) UpdateLastLogin(ctx context.Context, username string, at time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = $1 WHERE username = $2`, at.UTC(), username)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return requireAffected(res)
}

func (r *usersRepo) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	return exists, err
}

type messagesRepo struct {
	db dbtx
}

func (r *messagesRepo) CreateMessage(
	ctx context.Context,
	from, to, body string,
	sentAt time.Time,
) (domain.Message, error) {
	sentAt = sentAt.UTC()
	m := domain.Message{FromUsername: from, ToUsername: to, Body: body, SentAt: sentAt}
	err := r.db.QueryRowContext(ctx, `
INSERT INTO messages (from_username, to_username, body, sent_at)
VALUES ($1, $2, $3, $4)
RETURNING id`, from, to, body, sentAt).Scan(&m.ID)
	if err != nil {
		return domain.Message{}, fmt.Errorf("create message: %w", mapConstraint(err))
	}
	return m, nil
}

func (r *messagesRepo) GetMessage(ctx context.Context, id int64) (domain.Message, error) {
	m, err := scanMessage(r.db.QueryRowContext(ctx, selectMessage+` WHERE m.id = $1`, id))
	if err != nil {
		return domain.Message{}, mapNotFound(err)
	}
	return m, nil
}

// MarkRead relies on a single conditional UPDATE, so two concurrent calls
// still agree on one read_at.
func (r *messagesRepo) MarkRead(ctx context.Context, id int64, at time.Time) (domain.Message, error) {
	var (
		m      domain.Message
		readAt sql.NullTime
	)
	err := r.db.QueryRowContext(ctx, `
UPDATE messages SET read_at = COALESCE(read_at, $1)
WHERE id = $2
RETURNING id, read_at`, at.UTC(), id).Scan(&m.ID, &readAt)
	if err != nil {
		return domain.Message{}, mapNotFound(err)
	}
	if readAt.Valid {
		t := readAt.Time.UTC()
		m.ReadAt = &t
	}
	return m, nil
}

func (r *messagesRepo) ListTo(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, selectMessage+` WHERE m.to_username = $1 ORDER BY m.id`, username)
}

func (r *messagesRepo) ListFrom(ctx context.Context, username string) ([]domain.Message, error) {
	return r.list(ctx, selectMessage+` WHERE m.from_username = $1 ORDER BY m.id`, username)
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

type revocationsRepo struct {
	db dbtx
}

func (r *revocationsRepo) RevokeToken(ctx context.Context, rev domain.TokenRevocation) error {
	_, err := r.db.ExecContext(ctx, `
INSERT INTO token_revocations (token_id, username, key_id, revoked_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (token_id) DO NOTHING`, rev.TokenID, rev.Username, rev.KeyID, rev.RevokedAt.UTC())
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM token_revocations WHERE token_id = $1)`, tokenID).Scan(&revoked)
	return revoked, err
}

func (r *revocationsRepo) DeleteRevocationsExcept(ctx context.Context, keepKIDs []string) (int64, error) {
	if keepKIDs == nil {
		keepKIDs = []string{}
	}
	// pgx encodes a []string as text[]
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM token_revocations WHERE NOT (key_id = ANY($1))`, keepKIDs)
	if err != nil {
		return 0, fmt.Errorf("delete revocations: %w", err)
	}
	return res.RowsAffected()
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
