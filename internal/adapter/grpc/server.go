package grpc

import (
	"errors"
	"fmt"
	"net"

	"github.com/Abdurahmanit/GroupProject/property-service/internal/config"
	"github.com/Abdurahmanit/GroupProject/property-service/internal/platform/logger"
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server is the ops endpoint: standard health checking and reflection for
// grpcurl and orchestrator probes.
type Server struct {
	server      *grpc.Server
	health      *health.Server
	serviceName string
	addr        string
	logger      *logger.Logger
}

func NewServer(cfg config.GRPCConfig, serviceName string, log *logger.Logger) *Server {
	log = log.Named("GRPCServer")
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(LoggingInterceptor(log)),
	)
	reflection.Register(server)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)

	return &Server{
		server:      server,
		health:      healthServer,
		serviceName: serviceName,
		addr:        ":" + cfg.Port,
		logger:      log,
	}
}

// Start listens on the configured port and blocks until Stop.
func (s *Server) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen for gRPC on %s: %w", s.addr, err)
	}
	return s.Serve(lis)
}

func (s *Server) Serve(lis net.Listener) error {
	s.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	s.health.SetServingStatus(s.serviceName, grpc_health_v1.HealthCheckResponse_SERVING)
	s.logger.Info("Starting gRPC server", zap.String("address", lis.Addr().String()))
	if err := s.server.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("gRPC server: %w", err)
	}
	return nil
}

// Stop reports NOT_SERVING first so probes drain before the listener closes.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.logger.Info("gRPC health status set to NOT_SERVING")
	s.server.GracefulStop()
	s.logger.Info("gRPC server stopped")
}
