package server

import (
	"fmt"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/oggyb/yourcode/internal/config"
	"github.com/oggyb/yourcode/internal/logger"
)

// GRPCServer exposes the standard health service for orchestration probes.
type GRPCServer struct {
	addr   string
	srv    *grpc.Server
	health *health.Server
}

func NewGRPCServer(cfg *config.Config) *GRPCServer {
	grpcServer := grpc.NewServer()

	hs := health.NewServer()
	// start out not serving until the caller confirms backends are up
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	// enable reflection for easier debugging with grpcurl
	reflection.Register(grpcServer)

	return &GRPCServer{
		addr:   net.JoinHostPort(cfg.GRPC.Host, cfg.GRPC.Port),
		srv:    grpcServer,
		health: hs,
	}
}

// SetServing flips the overall health status.
func (s *GRPCServer) SetServing(ok bool) {
	status := healthpb.HealthCheckResponse_NOT_SERVING
	if ok {
		status = healthpb.HealthCheckResponse_SERVING
	}
	s.health.SetServingStatus("", status)
}

// Serve blocks on lis.
func (s *GRPCServer) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Start listens on the configured address and serves.
func (s *GRPCServer) Start() error {
	lis, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}
	logger.Info("starting gRPC health server", "addr", s.addr)
	return s.Serve(lis)
}

// Stop marks the service not serving and drains in-flight RPCs.
func (s *GRPCServer) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
