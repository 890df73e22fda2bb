package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/vterekhov/authgate/internal/apierr"
	"github.com/vterekhov/authgate/internal/logger"
	"github.com/vterekhov/authgate/internal/model"
)

// TokenService provides high-level operations for issuing, rotating,
// introspecting, and revoking tokens. It composes the TokenManager and the
// refresh token ledger.
type TokenService struct {
	manager    model.TokenManager
	store      model.RefreshTokenStore
	userStore  model.UserStore
	refreshTTL time.Duration
	logger     *logger.Logger
}

// NewTokenService creates a TokenService. refreshTTL governs how long a
// persisted ledger row stays live; it must match the refresh token lifetime
// configured on the manager.
func NewTokenService(
	manager model.TokenManager,
	store model.RefreshTokenStore,
	userStore model.UserStore,
	refreshTTL time.Duration,
	logger *logger.Logger,
) *TokenService {
	return &TokenService{
		manager:    manager,
		store:      store,
		userStore:  userStore,
		refreshTTL: refreshTTL,
		logger:     logger,
	}
}

// TokenStatus is the result of an access token introspection probe.
type TokenStatus struct {
	Valid  bool
	UserID string
}

// Issue mints an access/refresh pair for the user and records the refresh
// token's hash in the ledger.
func (s *TokenService) Issue(ctx context.Context, user model.User) (accessToken string, refreshToken string, err error) {
	claims := model.Claims{UserID: user.ID.String(), Email: user.Email}

	access, err := s.manager.GenerateAccessToken(claims)
	if err != nil {
		return "", "", fmt.Errorf("issue access: %w", err)
	}

	refresh, err := s.manager.GenerateRefreshToken(claims)
	if err != nil {
		return "", "", fmt.Errorf("issue refresh: %w", err)
	}

	if err := s.store.Save(ctx, refresh, user.ID, time.Now().Add(s.refreshTTL)); err != nil {
		return "", "", fmt.Errorf("persist refresh: %w", err)
	}

	return access, refresh, nil
}

// Refresh rotates a refresh token: it verifies the presented token, burns
// its ledger row, and issues a replacement pair. The presented token is
// unusable after any successful exit, and issuing happens strictly after
// burning so a crash in between cannot leave two live tokens.
func (s *TokenService) Refresh(ctx context.Context, presented string) (accessToken string, refreshToken string, err error) {
	claims, err := s.manager.ParseRefreshToken(presented)
	if err != nil {
		return "", "", apierr.NewTokenExpiredOrInvalid(apierr.TokenTypeRefresh)
	}

	record, err := s.store.Find(ctx, presented)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			// Revoked or already rotated away. Reported identically to
			// natural expiry so the caller cannot tell the two apart.
			return "", "", apierr.NewTokenExpiredOrInvalid(apierr.TokenTypeRefresh)
		}
		return "", "", fmt.Errorf("find refresh token: %w", err)
	}
	if !record.Live(time.Now()) {
		return "", "", apierr.NewTokenExpiredOrInvalid(apierr.TokenTypeRefresh)
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil || userID == uuid.Nil {
		return "", "", apierr.NewInvalidTokenPayload("missing user id")
	}

	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return "", "", apierr.NewUserNotFound(userID.String())
		}
		return "", "", fmt.Errorf("get user by id: %w", err)
	}

	deleted, err := s.store.DeleteIfPresent(ctx, presented)
	if err != nil {
		return "", "", fmt.Errorf("burn refresh token: %w", err)
	}
	if !deleted {
		// A concurrent refresh burned the row first; only one rotation per
		// presented token may succeed.
		return "", "", apierr.NewTokenExpiredOrInvalid(apierr.TokenTypeRefresh)
	}

	access, refresh, err := s.Issue(ctx, user)
	if err != nil {
		return "", "", fmt.Errorf("issue rotated pair: %w", err)
	}

	s.logger.Debug("Token service: refresh token rotated", "user_id", user.ID)

	return access, refresh, nil
}

// Validate introspects an access token. It never fails: any malformed,
// expired, or tampered token yields Valid=false.
func (s *TokenService) Validate(ctx context.Context, accessToken string) TokenStatus {
	claims, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return TokenStatus{Valid: false}
	}
	return TokenStatus{Valid: true, UserID: claims.UserID}
}

// Logout removes the ledger row for the presented refresh token. A token
// that matches no row is not an error, so logout is idempotent.
func (s *TokenService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.store.Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}
	return nil
}

// GetUserID resolves the user ID carried by an access token. Used by the
// authentication middleware for bearer tokens.
func (s *TokenService) GetUserID(ctx context.Context, accessToken string) (uuid.UUID, error) {
	claims, err := s.manager.ParseAccessToken(accessToken)
	if err != nil {
		return uuid.Nil, err
	}
	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("parse user id claim: %w", err)
	}
	return userID, nil
}
