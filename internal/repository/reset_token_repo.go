package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"go-auth-service/internal/model"
)

// ResetTokenRepository tracks redeemed reset-token ids so each reset token
// is single use. Rows only need to live as long as the token itself; expired
// rows are garbage collected.
type ResetTokenRepository struct {
	pool *pgxpool.Pool
}

func NewResetTokenRepository(pool *pgxpool.Pool) *ResetTokenRepository {
	return &ResetTokenRepository{pool: pool}
}

// Consume records the token id as redeemed. The insert is conditional on the
// id being absent; a second redemption of the same token fails with
// model.ErrInvalidToken.
func (r *ResetTokenRepository) Consume(ctx context.Context, tokenID string, email string, expiresAt time.Time) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO consumed_reset_tokens (token_id, email, consumed_at, expires_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (token_id) DO NOTHING`,
		tokenID, email, time.Now().UTC(), expiresAt)
	if err != nil {
		return fmt.Errorf("consume reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrInvalidToken
	}
	return nil
}

func (r *ResetTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM consumed_reset_tokens WHERE expires_at <= now()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired reset tokens: %w", err)
	}
	return tag.RowsAffected(), nil
}
