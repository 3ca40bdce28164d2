package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/aussiebroadwan/whisper/internal/whisper/domain"
)

type revocationsRepo struct {
	db dbtx
}

func (r *revocationsRepo) RevokeToken(ctx context.Context, rev domain.TokenRevocation) error {
	_, err := r.db.ExecContext(ctx, revokeToken, rev.TokenID, rev.Username, rev.KeyID, rev.RevokedAt.UTC())
	if err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (r *revocationsRepo) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	var revoked bool
	if err := r.db.QueryRowContext(ctx, isRevoked, tokenID).Scan(&revoked); err != nil {
		return false, err
	}
	return revoked, nil
}

func (r *revocationsRepo) DeleteRevocationsExcept(ctx context.Context, keepKIDs []string) (int64, error) {
	query := `DELETE FROM token_revocations`
	args := make([]any, 0, len(keepKIDs))
	if len(keepKIDs) > 0 {
		query += ` WHERE key_id NOT IN (` + strings.TrimSuffix(strings.Repeat("?,", len(keepKIDs)), ",") + `)`
		for _, kid := range keepKIDs {
			args = append(args, kid)
		}
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete revocations: %w", err)
	}
	return res.RowsAffected()
}
