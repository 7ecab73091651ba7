package health

import (
	"context"
	"fmt"
	"log/slog"
	"net"

	"timesheet-service/internal/metrics"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	grpchealth "google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the service name reported through grpc.health.v1.
const ServiceName = "timesheet.v1.TimesheetService"

// GRPCServer exposes grpc.health.v1 for orchestrator probes.
type GRPCServer struct {
	server *grpc.Server
	health *grpchealth.Server
	logger *slog.Logger
}

func NewGRPCServer(m *metrics.Metrics, logger *slog.Logger) *GRPCServer {
	server := grpc.NewServer(
		grpc.StatsHandler(otelgrpc.NewServerHandler()),
		grpc.ChainUnaryInterceptor(m.Grpc.UnaryServerInterceptor()),
	)

	healthServer := grpchealth.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{
		server: server,
		health: healthServer,
		logger: logger,
	}
}

func (s *GRPCServer) Health() *grpchealth.Server {
	return s.health
}

// Serve blocks until the listener fails or Stop is called.
func (s *GRPCServer) Serve(lis net.Listener) error {
	s.logger.Info("gRPC health server starting", "addr", lis.Addr().String())
	if err := s.server.Serve(lis); err != nil {
		return fmt.Errorf("gRPC server: %w", err)
	}
	return nil
}

func (s *GRPCServer) ListenAndServe(port string) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%s", port))
	if err != nil {
		return fmt.Errorf("failed to listen on gRPC port: %w", err)
	}
	return s.Serve(lis)
}

// Stop marks the service as not serving and drains in-flight RPCs.
func (s *GRPCServer) Stop(ctx context.Context) {
	s.health.Shutdown()

	done := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		s.server.Stop()
	}
}
