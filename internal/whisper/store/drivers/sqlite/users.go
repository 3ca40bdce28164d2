package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
)

type usersRepo struct {
	db dbtx
}

func (r *usersRepo) CreateUser(ctx context.Context, u domain.User) error {
	_, err := r.db.ExecContext(ctx, createUser,
		u.Username, u.PasswordHash, u.FirstName, u.LastName, u.Phone,
		u.JoinedAt.UTC(), u.LastLoginAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("create user: %w", mapConstraint(err))
	}
	return nil
}

func (r *usersRepo) GetUserByUsername(ctx context.Context, username string) (domain.User, error) {
	var u domain.User
	err := r.db.QueryRowContext(ctx, getUserByUsername, username).Scan(
		&u.Username, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone,
		&u.JoinedAt, &u.LastLoginAt,
	)
	if err != nil {
		return domain.User{}, mapNotFound(err)
	}
	u.JoinedAt = u.JoinedAt.UTC()
	u.LastLoginAt = u.LastLoginAt.UTC()
	return u, nil
}

func (r *usersRepo) ListUsers(ctx context.Context) ([]domain.UserSummary, error) {
	rows, err := r.db.QueryContext(ctx, listUsers)
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
	res, err := r.db.ExecContext(ctx, updateLastLogin, at.UTC(), username)
	if err != nil {
		return fmt.Errorf("update last login: %w", err)
	}
	return requireAffected(res)
}

func (r *usersRepo) UserExists(ctx context.Context, username string) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, userExists, username).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
