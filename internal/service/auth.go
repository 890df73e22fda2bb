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
	"github.com/vterekhov/authgate/internal/validation"
)

// Auth implements the credential-verification use cases: sign-up, sign-in,
// and authenticated profile lookup. Token issuance is delegated to
// TokenService so both flows share one issuance path.
type Auth struct {
	userStore    model.UserStore
	hasher       model.PasswordHasher
	tokenService *TokenService
	logger       *logger.Logger
}

// NewAuth creates an Auth service.
func NewAuth(
	userStore model.UserStore,
	hasher model.PasswordHasher,
	tokenService *TokenService,
	logger *logger.Logger,
) *Auth {
	return &Auth{
		userStore:    userStore,
		hasher:       hasher,
		tokenService: tokenService,
		logger:       logger,
	}
}

// AuthResult bundles the identity summary and freshly issued token pair
// returned by sign-up and sign-in.
type AuthResult struct {
	User         model.User
	AccessToken  string
	RefreshToken string
}

// SignUp registers a new user and issues the first token pair. The refresh
// token is persisted to the ledger, so it is redeemable exactly like one
// obtained from sign-in.
func (a *Auth) SignUp(ctx context.Context, email, password, displayName string) (AuthResult, error) {
	if fields := validation.SignUp(email, password, displayName); len(fields) > 0 {
		return AuthResult{}, apierr.NewValidationFailed(fields)
	}

	_, err := a.userStore.GetByEmail(ctx, email)
	if err == nil {
		a.logger.Info("Auth service: user already exists", "email", email)
		return AuthResult{}, apierr.NewEmailTaken(email)
	}
	if !errors.Is(err, model.ErrNotFound) {
		return AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	digest, err := a.hasher.Hash(password)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now()
	user, err := a.userStore.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: digest,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		// Concurrent sign-up with the same email loses the unique-index race.
		if errors.Is(err, model.ErrAlreadyExists) {
			return AuthResult{}, apierr.NewEmailTaken(email)
		}
		return AuthResult{}, fmt.Errorf("failed to create user: %w", err)
	}

	access, refresh, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user registered", "user_id", user.ID)

	return AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// SignIn verifies an email/password pair and issues a token pair. Unknown
// email and wrong password produce the same error so accounts cannot be
// enumerated.
func (a *Auth) SignIn(ctx context.Context, email, password string) (AuthResult, error) {
	if fields := validation.SignIn(email, password); len(fields) > 0 {
		return AuthResult{}, apierr.NewValidationFailed(fields)
	}

	user, err := a.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return AuthResult{}, apierr.NewInvalidCredentials()
		}
		return AuthResult{}, fmt.Errorf("failed to get user by email: %w", err)
	}

	if !a.hasher.Compare(password, user.PasswordHash) {
		return AuthResult{}, apierr.NewInvalidCredentials()
	}

	access, refresh, err := a.tokenService.Issue(ctx, user)
	if err != nil {
		return AuthResult{}, fmt.Errorf("failed to issue tokens: %w", err)
	}

	a.logger.Info("Auth service: user signed in", "user_id", user.ID)

	return AuthResult{User: user, AccessToken: access, RefreshToken: refresh}, nil
}

// GetUser returns the identity summary for an authenticated user.
func (a *Auth) GetUser(ctx context.Context, id uuid.UUID) (model.User, error) {
	user, err := a.userStore.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.User{}, apierr.NewUserNotFound(id.String())
		}
		return model.User{}, fmt.Errorf("failed to get user by id: %w", err)
	}
	return user, nil
}
