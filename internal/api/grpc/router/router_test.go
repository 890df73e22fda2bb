package router

import (
	"context"
	"testing"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/stretchr/testify/assert"

	"github.com/vterekhov/authgate/internal/mocks"
	"github.com/vterekhov/authgate/internal/testutil"
)

func TestRouter_Register(t *testing.T) {
	t.Parallel()

	ctxMgr := mocks.NewContextManager(t)
	lg := testutil.MakeNoopLogger()

	r := New(nil, nil, ctxMgr, lg)
	s := r.Register()
	if s == nil {
		t.Fatalf("expected non-nil grpc server")
	}

	info := s.GetServiceInfo()
	assert.Contains(t, info, "authgate.Auth")
	assert.Contains(t, info, "authgate.User")
}

func TestAuthSkip(t *testing.T) {
	t.Parallel()

	tests := []struct {
		service string
		method  string
		want    bool
	}{
		{service: "authgate.Auth", method: "SignUp", want: false},
		{service: "authgate.Auth", method: "SignIn", want: false},
		{service: "authgate.Auth", method: "RefreshToken", want: false},
		{service: "authgate.Auth", method: "ValidateToken", want: false},
		{service: "authgate.Auth", method: "Logout", want: false},
		{service: "authgate.User", method: "GetUser", want: true},
	}

	for _, tt := range tests {
		meta := interceptors.CallMeta{Service: tt.service, Method: tt.method}
		assert.Equal(t, tt.want, authSkip(context.Background(), meta), meta.FullMethod())
	}
}
