package store

import (
	"context"
	"errors"
	"time"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this. Repositories hang off it as methods so a Tx can
// hand out the same repositories bound to the transaction, and nobody opens
// a transaction inside another one by accident.
type Store interface {
	Users() Users
	Messages() Messages
	Revocations() Revocations

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx runs fn in a transaction, committing when fn returns nil and
	// rolling back otherwise.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It embeds the same repos but adds Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Users interface {
	// CreateUser inserts a new user. ErrAlreadyExists when the username is
	// taken.
	CreateUser(ctx context.Context, u domain.User) error

	// GetUserByUsername returns a user including its password hash.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// ListUsers returns every user's summary ordered by username.
	ListUsers(ctx context.Context) ([]domain.UserSummary, error)

	// UpdateLastLogin sets last_login_at.
	UpdateLastLogin(ctx context.Context, username string, at time.Time) error

	// UserExists reports whether username is registered.
	UserExists(ctx context.Context, username string) (bool, error)
}

type Messages interface {
	// CreateMessage inserts a message and returns it with its new id.
	// ErrNotFound when either party does not exist.
	CreateMessage(ctx context.Context, from, to, body string, sentAt time.Time) (domain.Message, error)

	// GetMessage returns a message with both parties' summaries filled in.
	GetMessage(ctx context.Context, id int64) (domain.Message, error)

	// MarkRead sets read_at to at unless it is already set, and returns the
	// message's id and effective read_at.
	MarkRead(ctx context.Context, id int64, at time.Time) (domain.Message, error)

	// ListTo returns messages received by username, oldest first.
	ListTo(ctx context.Context, username string) ([]domain.Message, error)

	// ListFrom returns messages sent by username, oldest first.
	ListFrom(ctx context.Context, username string) ([]domain.Message, error)
}

type Revocations interface {
	// RevokeToken records a revoked token id. Revoking twice is fine.
	RevokeToken(ctx context.Context, r domain.TokenRevocation) error

	// IsRevoked reports whether tokenID has been revoked.
	IsRevoked(ctx context.Context, tokenID string) (bool, error)

	// DeleteRevocationsExcept removes revocations of tokens signed by any
	// key not listed in keepKIDs and returns how many went.
	DeleteRevocationsExcept(ctx context.Context, keepKIDs []string) (int64, error)
}
