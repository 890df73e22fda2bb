package router

import (
	"context"
	"strings"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"

	"github.com/vterekhov/authgate/internal/api/grpc/handler"
	"github.com/vterekhov/authgate/internal/api/grpc/middleware"
	"github.com/vterekhov/authgate/internal/logger"
	"github.com/vterekhov/authgate/internal/model"
	pb "github.com/vterekhov/authgate/internal/proto"
	"github.com/vterekhov/authgate/internal/service"
)

// Router registers gRPC services and middleware for the auth server.
type Router struct {
	authService    *service.Auth
	tokenService   *service.TokenService
	contextManager model.ContextManager
	logger         *logger.Logger
}

// New creates a new gRPC Router instance wiring the auth and token services.
func New(
	authService *service.Auth,
	tokenService *service.TokenService,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		authService:    authService,
		tokenService:   tokenService,
		contextManager: contextManager,
		logger:         logger,
	}
}

// authSkip reports whether a method requires a bearer token. Every method of
// the public Auth service is reachable without one; everything else is
// guarded by the authenticate interceptor.
func authSkip(_ context.Context, c interceptors.CallMeta) bool {
	return !strings.HasPrefix(c.FullMethod(), "/authgate.Auth/")
}

// Register sets up the gRPC server with request logging and authentication
// interceptors and registers all services.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.tokenService, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(authSkip),
			),
		),
	)
	r.registerAuthRoutes(s)
	r.registerUserRoutes(s)

	return s
}

func (r *Router) registerAuthRoutes(server *grpc.Server) {
	authHandler := handler.NewAuth(r.authService, r.tokenService, r.logger)
	pb.RegisterAuthServer(server, authHandler)
}

func (r *Router) registerUserRoutes(server *grpc.Server) {
	userHandler := handler.NewUser(r.authService, r.contextManager, r.logger)
	pb.RegisterUserServer(server, userHandler)
}
