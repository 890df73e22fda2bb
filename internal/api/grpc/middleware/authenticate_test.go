package middleware

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/vterekhov/authgate/internal/mocks"
	"github.com/vterekhov/authgate/internal/testutil"
)

func TestAuthenticate_AuthFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		mdAuthHeader   string
		tokenSvcUserID uuid.UUID
		tokenSvcErr    error
		wantGRPCCode   codes.Code
		wantErr        bool
		expectSetCtx   bool
	}{
		{
			name:         "missing authorization header",
			mdAuthHeader: "",
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
			expectSetCtx: false,
		},
		{
			name:         "invalid token",
			mdAuthHeader: "Bearer invalid",
			tokenSvcErr:  assert.AnError,
			wantGRPCCode: codes.Unauthenticated,
			wantErr:      true,
			expectSetCtx: false,
		},
		{
			name:           "nil user id from token",
			mdAuthHeader:   "Bearer token",
			tokenSvcUserID: uuid.Nil,
			tokenSvcErr:    nil,
			wantGRPCCode:   codes.Unauthenticated,
			wantErr:        true,
			expectSetCtx:   false,
		},
		{
			name:           "valid token",
			mdAuthHeader:   "Bearer token",
			tokenSvcUserID: uuid.New(),
			tokenSvcErr:    nil,
			wantGRPCCode:   codes.OK,
			wantErr:        false,
			expectSetCtx:   true,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			lg := testutil.MakeNoopLogger()
			cm := mocks.NewContextManager(t)

			if tt.expectSetCtx {
				cm.On("SetUserIDToContext", mock.Anything, tt.tokenSvcUserID).Return(context.Background())
			}

			svc := mocks.NewTokenService(t)
			if tt.mdAuthHeader != "" {
				svc.On("GetUserID", mock.Anything, mock.AnythingOfType("string")).Return(tt.tokenSvcUserID, tt.tokenSvcErr)
			}

			m := NewAuthenticate(svc, cm, lg)

			ctx := context.Background()
			if tt.mdAuthHeader != "" {
				md := metadata.New(map[string]string{"authorization": tt.mdAuthHeader})
				ctx = metadata.NewIncomingContext(ctx, md)
			}

			gotCtx, err := m.AuthFunc(ctx)

			if tt.wantErr {
				assert.Error(t, err)
				st, ok := status.FromError(err)
				assert.True(t, ok)
				assert.Equal(t, tt.wantGRPCCode, st.Code())
				assert.Nil(t, gotCtx)
				return
			}

			assert.NoError(t, err)
			assert.NotNil(t, gotCtx)
		})
	}
}

func TestAuthenticate_AuthFunc_TokenWithoutBearerPrefix(t *testing.T) {
	t.Parallel()

	userID := uuid.New()

	lg := testutil.MakeNoopLogger()
	cm := mocks.NewContextManager(t)
	svc := mocks.NewTokenService(t)

	// The Bearer prefix is optional; a bare token is accepted as-is.
	svc.On("GetUserID", mock.Anything, "raw-token").Return(userID, nil)
	cm.On("SetUserIDToContext", mock.Anything, userID).Return(context.Background())

	m := NewAuthenticate(svc, cm, lg)

	md := metadata.New(map[string]string{"authorization": "raw-token"})
	ctx := metadata.NewIncomingContext(context.Background(), md)

	gotCtx, err := m.AuthFunc(ctx)
	assert.NoError(t, err)
	assert.NotNil(t, gotCtx)
}
