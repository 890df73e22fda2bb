package handler

import (
	"context"

	"github.com/vterekhov/authgate/internal/logger"
	pb "github.com/vterekhov/authgate/internal/proto"
	"github.com/vterekhov/authgate/internal/service"
)

// AuthService defines user registration and sign-in operations.
type AuthService interface {
	SignUp(ctx context.Context, email, password, displayName string) (service.AuthResult, error)
	SignIn(ctx context.Context, email, password string) (service.AuthResult, error)
}

// TokenService defines token rotation, introspection, and revocation operations.
type TokenService interface {
	Refresh(ctx context.Context, refreshToken string) (accessToken string, newRefreshToken string, err error)
	Validate(ctx context.Context, accessToken string) service.TokenStatus
	Logout(ctx context.Context, refreshToken string) error
}

// Auth handles gRPC endpoints for authentication.
type Auth struct {
	pb.UnimplementedAuthServer
	authService  AuthService
	tokenService TokenService
	logger       *logger.Logger
}

// NewAuth creates a new Auth handler.
func NewAuth(authService AuthService, tokenService TokenService, logger *logger.Logger) *Auth {
	return &Auth{
		authService:  authService,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SignUp registers a new user and returns the identity summary with the
// first token pair.
func (h *Auth) SignUp(ctx context.Context, req *pb.SignUpRequest) (*pb.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing sign-up request", "email", req.Email)

	result, err := h.authService.SignUp(ctx, req.Email, req.Password, req.DisplayName)
	if err != nil {
		h.logger.Error("Auth handler: sign-up failed",
			"email", req.Email,
			"error", err.Error())
		return nil, h.handleError(err)
	}

	h.logger.Info("Auth handler: sign-up completed", "user_id", result.User.ID)

	return &pb.AuthResponse{
		User: &pb.UserInfo{
			Id:          result.User.ID.String(),
			Email:       result.User.Email,
			DisplayName: result.User.DisplayName,
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

// SignIn verifies credentials and returns the identity summary with a fresh
// token pair.
func (h *Auth) SignIn(ctx context.Context, req *pb.SignInRequest) (*pb.AuthResponse, error) {
	h.logger.Debug("Auth handler: processing sign-in request", "email", req.Email)

	result, err := h.authService.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		h.logger.Error("Auth handler: sign-in failed",
			"email", req.Email,
			"error", err.Error())
		return nil, h.handleError(err)
	}

	h.logger.Info("Auth handler: sign-in completed", "user_id", result.User.ID)

	return &pb.AuthResponse{
		User: &pb.UserInfo{
			Id:          result.User.ID.String(),
			Email:       result.User.Email,
			DisplayName: result.User.DisplayName,
		},
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	}, nil
}

// RefreshToken rotates the presented refresh token and returns a new pair.
func (h *Auth) RefreshToken(ctx context.Context, req *pb.RefreshTokenRequest) (*pb.RefreshResponse, error) {
	h.logger.Debug("Auth handler: processing refresh request")

	access, refresh, err := h.tokenService.Refresh(ctx, req.RefreshToken)
	if err != nil {
		h.logger.Error("Auth handler: refresh failed", "error", err.Error())
		return nil, h.handleError(err)
	}

	return &pb.RefreshResponse{
		AccessToken:  access,
		RefreshToken: refresh,
	}, nil
}

// ValidateToken introspects an access token. It always answers; invalid
// tokens produce Valid=false rather than an error.
func (h *Auth) ValidateToken(ctx context.Context, req *pb.ValidateTokenRequest) (*pb.ValidateTokenResponse, error) {
	result := h.tokenService.Validate(ctx, req.Token)

	return &pb.ValidateTokenResponse{
		Valid:  result.Valid,
		UserId: result.UserID,
	}, nil
}

// Logout revokes the presented refresh token. Revoking an unknown token
// still succeeds.
func (h *Auth) Logout(ctx context.Context, req *pb.LogoutRequest) (*pb.LogoutResponse, error) {
	if err := h.tokenService.Logout(ctx, req.RefreshToken); err != nil {
		h.logger.Error("Auth handler: logout failed", "error", err.Error())
		return nil, h.handleError(err)
	}

	return &pb.LogoutResponse{Success: true}, nil
}
