// Package grpc exposes the token request lifecycle over gRPC.
package grpc

import (
	"context"
	"net"

	"github.com/dmitrijs2005/carmeet/internal/logging"
	"github.com/dmitrijs2005/carmeet/internal/server/models"
	"github.com/dmitrijs2005/carmeet/internal/timex"
	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// TokenService is the token lifecycle as seen by the transport.
type TokenService interface {
	GenerateToken(ctx context.Context, user uuid.UUID) (*models.Token, error)
	ValidateTokenAndFetchUser(ctx context.Context, fullToken string) (uuid.UUID, error)
	RemoveTokenRequest(ctx context.Context, fullToken string) error
	RemoveUserTokenRequests(ctx context.Context, user uuid.UUID) error
	TokenLifetime() int
}

type GarbageCollector interface {
	HandleGarbageCollection(ctx context.Context, force bool) (int64, error)
}

type ActivationService interface {
	RequestActivation(ctx context.Context, userID uuid.UUID, reset bool) (*models.Token, error)
	Activate(ctx context.Context, fullToken string) (*models.User, error)
}

type GRPCServer struct {
	address    string
	tokens     TokenService
	cleaner    GarbageCollector
	activation ActivationService
	logger     logging.Logger
	jwtSecret  []byte
	clock      timex.Clock
	health     *health.Server
}

// NewGRPCServer builds the server. activation may be nil when the server
// runs without a user database; its methods then answer Unimplemented.
func NewGRPCServer(a string, l logging.Logger, tokens TokenService, cleaner GarbageCollector,
	activation ActivationService, secretKey string, clock timex.Clock) *GRPCServer {
	if clock == nil {
		clock = timex.SystemClock{}
	}
	return &GRPCServer{
		address:    a,
		logger:     l.With("module", "grpc_server"),
		tokens:     tokens,
		cleaner:    cleaner,
		activation: activation,
		jwtSecret:  []byte(secretKey),
		clock:      clock,
		health:     health.NewServer(),
	}
}

// NewServer creates a grpc.Server with the token service, health checks and
// reflection registered. The token service descriptor comes from descriptor.go,
// so reflection clients can describe it as well as list it.
func (s *GRPCServer) NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts, grpc.ChainUnaryInterceptor(s.loggingInterceptor, s.accessTokenInterceptor))
	srv := grpc.NewServer(opts...)

	RegisterTokenServiceServer(srv, s)

	healthpb.RegisterHealthServer(srv, s.health)
	s.health.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	reflection.Register(srv)

	return srv
}

// Run serves until ctx is canceled, then stops gracefully.
func (s *GRPCServer) Run(ctx context.Context) error {

	// announces address
	listen, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}

	srv := s.NewServer()

	go func() {
		<-ctx.Done()
		s.logger.Info(ctx, "Stopping gRPC server...")
		s.health.Shutdown()
		srv.GracefulStop()
	}()

	s.logger.Info(ctx, "Starting gRPC server", "address", s.address)

	// starts accepting incoming connections
	if err := srv.Serve(listen); err != nil {
		return err
	}

	return nil
}
