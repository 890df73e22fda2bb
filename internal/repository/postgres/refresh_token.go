package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/vterekhov/authgate/internal/model"
)

var _ model.RefreshTokenStore = (*RefreshTokenRepository)(nil)

// RefreshTokenRepository stores refresh tokens hashed at rest; every
// operation hashes the raw token before touching the table.
type RefreshTokenRepository struct {
	db *Connection
}

func NewRefreshTokenRepository(db *Connection) *RefreshTokenRepository {
	return &RefreshTokenRepository{db: db}
}

func (r *RefreshTokenRepository) Save(ctx context.Context, rawToken string, userID uuid.UUID, expiresAt time.Time) error {
	const query = `
        INSERT INTO refresh_tokens (token_hash, user_id, expires_at, created_at)
        VALUES ($1, $2, $3, NOW())
    `

	_, err := r.db.Exec(ctx, query, model.HashToken(rawToken), userID, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to save refresh token: %w", err)
	}
	return nil
}

func (r *RefreshTokenRepository) Find(ctx context.Context, rawToken string) (model.RefreshToken, error) {
	const query = `
        SELECT token_hash, user_id, expires_at, created_at
        FROM refresh_tokens WHERE token_hash = $1
    `

	var rt model.RefreshToken
	err := r.db.QueryRow(ctx, query, model.HashToken(rawToken)).Scan(
		&rt.TokenHash, &rt.UserID, &rt.ExpiresAt, &rt.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.RefreshToken{}, model.ErrNotFound
		}
		return model.RefreshToken{}, fmt.Errorf("failed to find refresh token: %w", err)
	}
	return rt, nil
}

func (r *RefreshTokenRepository) Delete(ctx context.Context, rawToken string) error {
	const query = `DELETE FROM refresh_tokens WHERE token_hash = $1`

	if _, err := r.db.Exec(ctx, query, model.HashToken(rawToken)); err != nil {
		return fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return nil
}

// DeleteIfPresent removes the row for rawToken and reports whether a row was
// deleted. The row count makes the delete a conditional primitive: of two
// concurrent rotations presenting the same token, exactly one observes true.
func (r *RefreshTokenRepository) DeleteIfPresent(ctx context.Context, rawToken string) (bool, error) {
	const query = `DELETE FROM refresh_tokens WHERE token_hash = $1`

	tag, err := r.db.Exec(ctx, query, model.HashToken(rawToken))
	if err != nil {
		return false, fmt.Errorf("failed to delete refresh token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
