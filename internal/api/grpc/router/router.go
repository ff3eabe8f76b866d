package router

import (
	"context"

	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/auth"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/recovery"
	"github.com/grpc-ecosystem/go-grpc-middleware/v2/interceptors/selector"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"

	"github.com/dtroode/contractchecker-server/internal/api/grpc/callable"
	"github.com/dtroode/contractchecker-server/internal/api/grpc/handler"
	"github.com/dtroode/contractchecker-server/internal/api/grpc/middleware"
	"github.com/dtroode/contractchecker-server/internal/logger"
	"github.com/dtroode/contractchecker-server/internal/model"
)

// Router represents a gRPC router for the callable operations.
type Router struct {
	waitlistService handler.WaitlistService
	deviceService   handler.DeviceService
	uploadService   handler.UploadService
	verifier        model.IdentityVerifier
	contextManager  model.ContextManager
	logger          *logger.Logger
}

// New creates new gRPC Router instance.
func New(
	waitlistService handler.WaitlistService,
	deviceService handler.DeviceService,
	uploadService handler.UploadService,
	verifier model.IdentityVerifier,
	contextManager model.ContextManager,
	logger *logger.Logger,
) *Router {
	return &Router{
		waitlistService: waitlistService,
		deviceService:   deviceService,
		uploadService:   uploadService,
		verifier:        verifier,
		contextManager:  contextManager,
		logger:          logger,
	}
}

// AddToWaitlist is public; health checks are served without credentials.
func requiresAuth(_ context.Context, c interceptors.CallMeta) bool {
	return c.Service == callable.ServiceName && c.Method != callable.MethodAddToWaitlist
}

func (r *Router) recover(ctx context.Context, p any) error {
	r.logger.ErrorContext(ctx, "gRPC handler panicked",
		"panic", p)
	return status.Error(codes.Internal, "internal server error")
}

// Register builds the gRPC server with logging, panic recovery and
// authentication interceptors and registers all services on it.
func (r *Router) Register() *grpc.Server {
	logging := middleware.NewLogging(r.logger)
	authenticate := middleware.NewAuthenticate(r.verifier, r.contextManager, r.logger)

	s := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			logging.HandleGRPC,
			recovery.UnaryServerInterceptor(recovery.WithRecoveryHandlerContext(r.recover)),
			selector.UnaryServerInterceptor(
				auth.UnaryServerInterceptor(authenticate.AuthFunc),
				selector.MatchFunc(requiresAuth),
			),
		),
	)
	r.registerCallableRoutes(s)
	r.registerHealth(s)

	return s
}

func (r *Router) registerCallableRoutes(server *grpc.Server) {
	callableHandler := handler.NewCallable(r.waitlistService, r.deviceService, r.uploadService, r.contextManager, r.logger)
	callable.RegisterServer(server, callableHandler)
}

func (r *Router) registerHealth(server *grpc.Server) {
	hs := health.NewServer()
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	hs.SetServingStatus(callable.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, hs)
}
