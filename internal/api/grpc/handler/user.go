package handler

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/vterekhov/authgate/internal/logger"
	"github.com/vterekhov/authgate/internal/model"
	pb "github.com/vterekhov/authgate/internal/proto"
)

// UserService defines identity lookup operations.
type UserService interface {
	GetUser(ctx context.Context, id uuid.UUID) (model.User, error)
}

// User handles gRPC endpoints for authenticated user operations.
type User struct {
	pb.UnimplementedUserServer
	userService    UserService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// NewUser creates a new User handler.
func NewUser(userService UserService, contextManager model.ContextManager, logger *logger.Logger) *User {
	return &User{
		userService:    userService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// GetUser returns the identity summary of the authenticated caller.
func (h *User) GetUser(ctx context.Context, _ *pb.GetUserRequest) (*pb.GetUserResponse, error) {
	userID, ok := h.contextManager.GetUserIDFromContext(ctx)
	if !ok {
		return nil, status.Error(codes.Unauthenticated, "missing user id in context")
	}

	user, err := h.userService.GetUser(ctx, userID)
	if err != nil {
		h.logger.Error("User handler: get user failed",
			"user_id", userID,
			"error", err.Error())
		return nil, handleError(err, h.logger)
	}

	return &pb.GetUserResponse{
		User: &pb.UserInfo{
			Id:          user.ID.String(),
			Email:       user.Email,
			DisplayName: user.DisplayName,
		},
	}, nil
}
