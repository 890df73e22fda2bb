package model

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenStore persists one row per live refresh token. Raw tokens are
// never stored; implementations key every operation by HashToken(rawToken).
type RefreshTokenStore interface {
	Save(ctx context.Context, rawToken string, userID uuid.UUID, expiresAt time.Time) error
	Find(ctx context.Context, rawToken string) (RefreshToken, error)
	Delete(ctx context.Context, rawToken string) error
	// DeleteIfPresent atomically removes the row for rawToken and reports
	// whether a row was actually deleted. Rotation relies on this to ensure
	// a presented token is burned exactly once.
	DeleteIfPresent(ctx context.Context, rawToken string) (bool, error)
}

// RefreshToken is a ledger record for one outstanding refresh token.
type RefreshToken struct {
	TokenHash string
	UserID    uuid.UUID
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Live reports whether the record is still usable for renewal at the given
// moment. Expired rows are treated as absent; no background sweep exists.
func (t RefreshToken) Live(now time.Time) bool {
	return now.Before(t.ExpiresAt)
}

// HashToken returns the sha256 hex digest of a raw refresh token, the only
// form in which tokens appear in storage.
func HashToken(rawToken string) string {
	sum := sha256.Sum256([]byte(rawToken))
	return hex.EncodeToString(sum[:])
}
