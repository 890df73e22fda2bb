package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vterekhov/authgate/internal/apierr"
	"github.com/vterekhov/authgate/internal/hasher"
	"github.com/vterekhov/authgate/internal/logger"
	"github.com/vterekhov/authgate/internal/model"
	"github.com/vterekhov/authgate/internal/service"
	"github.com/vterekhov/authgate/internal/token"
)

// memUserStore and memTokenStore are in-memory stand-ins for the postgres
// repositories, so lifecycle scenarios run against the real token manager
// and password hasher.
type memUserStore struct {
	mu    sync.Mutex
	users map[uuid.UUID]model.User
}

func newMemUserStore() *memUserStore {
	return &memUserStore{users: map[uuid.UUID]model.User{}}
}

func (s *memUserStore) GetByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return u, nil
		}
	}
	return model.User{}, model.ErrNotFound
}

func (s *memUserStore) GetByID(_ context.Context, id uuid.UUID) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrNotFound
	}
	return u, nil
}

func (s *memUserStore) Create(_ context.Context, user model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return model.User{}, model.ErrAlreadyExists
		}
	}
	s.users[user.ID] = user
	return user, nil
}

type memTokenStore struct {
	mu     sync.Mutex
	tokens map[string]model.RefreshToken
}

func newMemTokenStore() *memTokenStore {
	return &memTokenStore{tokens: map[string]model.RefreshToken{}}
}

func (s *memTokenStore) Save(_ context.Context, rawToken string, userID uuid.UUID, expiresAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := model.HashToken(rawToken)
	s.tokens[hash] = model.RefreshToken{
		TokenHash: hash,
		UserID:    userID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (s *memTokenStore) Find(_ context.Context, rawToken string) (model.RefreshToken, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rt, ok := s.tokens[model.HashToken(rawToken)]
	if !ok {
		return model.RefreshToken{}, model.ErrNotFound
	}
	return rt, nil
}

func (s *memTokenStore) Delete(_ context.Context, rawToken string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, model.HashToken(rawToken))
	return nil
}

func (s *memTokenStore) DeleteIfPresent(_ context.Context, rawToken string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hash := model.HashToken(rawToken)
	if _, ok := s.tokens[hash]; !ok {
		return false, nil
	}
	delete(s.tokens, hash)
	return true, nil
}

func newLifecycleFixture(t *testing.T) (*service.Auth, *service.TokenService, *memTokenStore) {
	t.Helper()

	manager, err := token.NewJWT("access-secret", "refresh-secret", 15*time.Minute, time.Hour)
	require.NoError(t, err)

	users := newMemUserStore()
	store := newMemTokenStore()

	tokens := service.NewTokenService(manager, store, users, time.Hour, logger.New(0))
	auth := service.NewAuth(users, hasher.NewBcrypt(), tokens, logger.New(0))

	return auth, tokens, store
}

func TestLifecycle_SignUpRefreshLogout(t *testing.T) {
	ctx := context.Background()
	auth, tokens, _ := newLifecycleFixture(t)

	signedUp, err := auth.SignUp(ctx, "ann@example.com", "Str0ng!pass", "Ann")
	require.NoError(t, err)
	require.NotEmpty(t, signedUp.AccessToken)
	require.NotEmpty(t, signedUp.RefreshToken)

	status := tokens.Validate(ctx, signedUp.AccessToken)
	assert.True(t, status.Valid)
	assert.Equal(t, signedUp.User.ID.String(), status.UserID)

	// A refresh token is redeemable exactly once.
	access2, refresh2, err := tokens.Refresh(ctx, signedUp.RefreshToken)
	require.NoError(t, err)
	require.NotEmpty(t, access2)
	require.NotEqual(t, signedUp.RefreshToken, refresh2)

	_, _, err = tokens.Refresh(ctx, signedUp.RefreshToken)
	requireKind(t, err, apierr.KindTokenExpired)

	// The rotated pair works.
	assert.True(t, tokens.Validate(ctx, access2).Valid)

	require.NoError(t, tokens.Logout(ctx, refresh2))

	_, _, err = tokens.Refresh(ctx, refresh2)
	requireKind(t, err, apierr.KindTokenExpired)

	// Logout of an already revoked token still succeeds.
	require.NoError(t, tokens.Logout(ctx, refresh2))
}

func TestLifecycle_SameSecondIssuesAreDistinct(t *testing.T) {
	ctx := context.Background()
	auth, tokens, _ := newLifecycleFixture(t)

	signedUp, err := auth.SignUp(ctx, "ann@example.com", "Str0ng!pass", "Ann")
	require.NoError(t, err)

	// Two issues for the same user in the same second must not collide in
	// the ledger; both pairs stay independently redeemable.
	access1, refresh1, err := tokens.Issue(ctx, signedUp.User)
	require.NoError(t, err)
	access2, refresh2, err := tokens.Issue(ctx, signedUp.User)
	require.NoError(t, err)

	require.NotEqual(t, refresh1, refresh2)
	require.NotEqual(t, access1, access2)

	_, _, err = tokens.Refresh(ctx, refresh1)
	require.NoError(t, err)
	_, _, err = tokens.Refresh(ctx, refresh2)
	require.NoError(t, err)
}

func TestLifecycle_SignInIssuesRedeemablePair(t *testing.T) {
	ctx := context.Background()
	auth, tokens, _ := newLifecycleFixture(t)

	_, err := auth.SignUp(ctx, "ann@example.com", "Str0ng!pass", "Ann")
	require.NoError(t, err)

	signedIn, err := auth.SignIn(ctx, "ann@example.com", "Str0ng!pass")
	require.NoError(t, err)

	_, _, err = tokens.Refresh(ctx, signedIn.RefreshToken)
	require.NoError(t, err)
}

func TestLifecycle_RefreshRejectsAccessToken(t *testing.T) {
	ctx := context.Background()
	auth, tokens, _ := newLifecycleFixture(t)

	signedUp, err := auth.SignUp(ctx, "ann@example.com", "Str0ng!pass", "Ann")
	require.NoError(t, err)

	// Access tokens are signed with a different secret and never enter
	// the ledger.
	_, _, err = tokens.Refresh(ctx, signedUp.AccessToken)
	requireKind(t, err, apierr.KindTokenExpired)
}

func TestLifecycle_ValidateRejectsRefreshToken(t *testing.T) {
	ctx := context.Background()
	auth, tokens, _ := newLifecycleFixture(t)

	signedUp, err := auth.SignUp(ctx, "ann@example.com", "Str0ng!pass", "Ann")
	require.NoError(t, err)

	status := tokens.Validate(ctx, signedUp.RefreshToken)
	assert.False(t, status.Valid)
}

func TestLifecycle_LedgerRevocationBeatsSignature(t *testing.T) {
	ctx := context.Background()
	auth, tokens, store := newLifecycleFixture(t)

	signedUp, err := auth.SignUp(ctx, "ann@example.com", "Str0ng!pass", "Ann")
	require.NoError(t, err)

	// Drop the ledger row out from under a cryptographically valid token.
	require.NoError(t, store.Delete(ctx, signedUp.RefreshToken))

	_, _, err = tokens.Refresh(ctx, signedUp.RefreshToken)
	requireKind(t, err, apierr.KindTokenExpired)
}
