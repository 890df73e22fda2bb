package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vterekhov/authgate/internal/apierr"
	"github.com/vterekhov/authgate/internal/logger"
	authmocks "github.com/vterekhov/authgate/internal/mocks"
	"github.com/vterekhov/authgate/internal/model"
	"github.com/vterekhov/authgate/internal/service"
)

const validPassword = "Str0ng!pass"

func newAuthFixture(users *authmocks.UserStore, hasher *authmocks.PasswordHasher, manager *authmocks.TokenManager, store *authmocks.RefreshTokenStore) *service.Auth {
	tokens := service.NewTokenService(manager, store, users, time.Hour, logger.New(0))
	return service.NewAuth(users, hasher, tokens, logger.New(0))
}

func expectIssue(manager *authmocks.TokenManager, store *authmocks.RefreshTokenStore) {
	manager.On("GenerateAccessToken", mock.Anything).Return("access", nil).Once()
	manager.On("GenerateRefreshToken", mock.Anything).Return("refresh", nil).Once()
	store.On("Save", mock.Anything, "refresh", mock.Anything, mock.Anything).Return(nil).Once()
}

func TestAuth_SignUp(t *testing.T) {
	ctx := context.Background()

	users := &authmocks.UserStore{}
	hasher := &authmocks.PasswordHasher{}
	manager := &authmocks.TokenManager{}
	store := &authmocks.RefreshTokenStore{}

	users.On("GetByEmail", ctx, "ann@example.com").Return(model.User{}, model.ErrNotFound).Once()
	hasher.On("Hash", validPassword).Return("digest", nil).Once()
	users.On("Create", ctx, mock.MatchedBy(func(u model.User) bool {
		return u.Email == "ann@example.com" && u.PasswordHash == "digest" && u.DisplayName == "Ann" && u.ID != uuid.Nil
	})).Return(func(_ context.Context, u model.User) (model.User, error) {
		return u, nil
	}).Once()
	expectIssue(manager, store)

	svc := newAuthFixture(users, hasher, manager, store)

	result, err := svc.SignUp(ctx, "ann@example.com", validPassword, "Ann")
	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", result.User.Email)
	assert.Equal(t, "Ann", result.User.DisplayName)
	assert.Equal(t, "access", result.AccessToken)
	assert.Equal(t, "refresh", result.RefreshToken)
	users.AssertExpectations(t)
	store.AssertExpectations(t)
}

func TestAuth_SignUp_ValidationFailed(t *testing.T) {
	ctx := context.Background()

	users := &authmocks.UserStore{}

	svc := newAuthFixture(users, &authmocks.PasswordHasher{}, &authmocks.TokenManager{}, &authmocks.RefreshTokenStore{})

	tt := []struct {
		name        string
		email       string
		password    string
		displayName string
		wantField   string
	}{
		{
			name:        "bad email",
			email:       "not-an-email",
			password:    validPassword,
			displayName: "Ann",
			wantField:   "email",
		},
		{
			name:        "short password",
			email:       "ann@example.com",
			password:    "S1!",
			displayName: "Ann",
			wantField:   "password",
		},
		{
			name:        "password without symbol",
			email:       "ann@example.com",
			password:    "Passw0rd",
			displayName: "Ann",
			wantField:   "password",
		},
		{
			name:        "display name too short",
			email:       "ann@example.com",
			password:    validPassword,
			displayName: "A",
			wantField:   "displayName",
		},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tc.email, tc.password, tc.displayName)
			apiErr := requireKind(t, err, apierr.KindValidation)
			assert.Contains(t, apiErr.Fields, tc.wantField)
		})
	}

	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuth_SignUp_EmailTaken(t *testing.T) {
	ctx := context.Background()

	users := &authmocks.UserStore{}
	hasher := &authmocks.PasswordHasher{}

	users.On("GetByEmail", ctx, "ann@example.com").Return(testUser(), nil).Once()

	svc := newAuthFixture(users, hasher, &authmocks.TokenManager{}, &authmocks.RefreshTokenStore{})

	_, err := svc.SignUp(ctx, "ann@example.com", validPassword, "Ann")
	requireKind(t, err, apierr.KindAlreadyExists)
	hasher.AssertNotCalled(t, "Hash", mock.Anything)
}

func TestAuth_SignUp_LostCreateRace(t *testing.T) {
	ctx := context.Background()

	users := &authmocks.UserStore{}
	hasher := &authmocks.PasswordHasher{}

	users.On("GetByEmail", ctx, "ann@example.com").Return(model.User{}, model.ErrNotFound).Once()
	hasher.On("Hash", validPassword).Return("digest", nil).Once()
	users.On("Create", ctx, mock.Anything).Return(model.User{}, model.ErrAlreadyExists).Once()

	svc := newAuthFixture(users, hasher, &authmocks.TokenManager{}, &authmocks.RefreshTokenStore{})

	_, err := svc.SignUp(ctx, "ann@example.com", validPassword, "Ann")
	requireKind(t, err, apierr.KindAlreadyExists)
}

func TestAuth_SignIn(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	user.PasswordHash = "digest"

	users := &authmocks.UserStore{}
	hasher := &authmocks.PasswordHasher{}
	manager := &authmocks.TokenManager{}
	store := &authmocks.RefreshTokenStore{}

	users.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	hasher.On("Compare", validPassword, "digest").Return(true).Once()
	expectIssue(manager, store)

	svc := newAuthFixture(users, hasher, manager, store)

	result, err := svc.SignIn(ctx, user.Email, validPassword)
	require.NoError(t, err)
	assert.Equal(t, user.ID, result.User.ID)
	assert.Equal(t, "access", result.AccessToken)
	assert.Equal(t, "refresh", result.RefreshToken)
}

func TestAuth_SignIn_UnknownEmailAndWrongPasswordLookSame(t *testing.T) {
	ctx := context.Background()
	user := testUser()
	user.PasswordHash = "digest"

	users := &authmocks.UserStore{}
	hasher := &authmocks.PasswordHasher{}

	users.On("GetByEmail", ctx, "nobody@example.com").Return(model.User{}, model.ErrNotFound).Once()
	users.On("GetByEmail", ctx, user.Email).Return(user, nil).Once()
	hasher.On("Compare", "Wrong1!pass", "digest").Return(false).Once()

	svc := newAuthFixture(users, hasher, &authmocks.TokenManager{}, &authmocks.RefreshTokenStore{})

	_, errUnknown := svc.SignIn(ctx, "nobody@example.com", validPassword)
	_, errMismatch := svc.SignIn(ctx, user.Email, "Wrong1!pass")

	unknownErr := requireKind(t, errUnknown, apierr.KindInvalidCredentials)
	mismatchErr := requireKind(t, errMismatch, apierr.KindInvalidCredentials)
	assert.Equal(t, unknownErr.Message, mismatchErr.Message)
}

func TestAuth_SignIn_ValidationFailed(t *testing.T) {
	ctx := context.Background()

	users := &authmocks.UserStore{}

	svc := newAuthFixture(users, &authmocks.PasswordHasher{}, &authmocks.TokenManager{}, &authmocks.RefreshTokenStore{})

	_, err := svc.SignIn(ctx, "", "")
	requireKind(t, err, apierr.KindValidation)
	users.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

func TestAuth_GetUser(t *testing.T) {
	ctx := context.Background()
	user := testUser()

	users := &authmocks.UserStore{}

	users.On("GetByID", ctx, user.ID).Return(user, nil).Once()

	svc := newAuthFixture(users, &authmocks.PasswordHasher{}, &authmocks.TokenManager{}, &authmocks.RefreshTokenStore{})

	got, err := svc.GetUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user, got)
}

func TestAuth_GetUser_NotFound(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()

	users := &authmocks.UserStore{}

	users.On("GetByID", ctx, id).Return(model.User{}, model.ErrNotFound).Once()

	svc := newAuthFixture(users, &authmocks.PasswordHasher{}, &authmocks.TokenManager{}, &authmocks.RefreshTokenStore{})

	_, err := svc.GetUser(ctx, id)
	requireKind(t, err, apierr.KindUserNotFound)
}
