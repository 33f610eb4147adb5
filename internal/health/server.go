// Package health serves the standard gRPC health protocol for the gateway,
// reporting SERVING while the store backend answers pings.
package health

import (
	"context"
	"log"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// ServiceName is the health service name for the store backend. The empty
// name reports overall server health and tracks the same status.
const ServiceName = "stockbook.Store"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	grpc     *grpc.Server
	health   *health.Server
	pinger   Pinger
	interval time.Duration
	timeout  time.Duration
}

func NewServer(pinger Pinger, interval time.Duration) *Server {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	s := &Server{
		grpc:     grpc.NewServer(),
		health:   health.NewServer(),
		pinger:   pinger,
		interval: interval,
		timeout:  3 * time.Second,
	}
	healthpb.RegisterHealthServer(s.grpc, s.health)
	reflection.Register(s.grpc)
	s.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

func (s *Server) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", status)
	s.health.SetServingStatus(ServiceName, status)
}

// Check pings the backend once and publishes the result.
func (s *Server) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	if err := s.pinger.Ping(ctx); err != nil {
		log.Printf("Warning: store backend ping failed: %v", err)
		status = healthpb.HealthCheckResponse_NOT_SERVING
	}
	s.setStatus(status)
	return status
}

// Run re-checks the backend every interval until ctx is done.
func (s *Server) Run(ctx context.Context) {
	s.Check(ctx)
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Check(ctx)
		}
	}
}

func (s *Server) Serve(lis net.Listener) error {
	return s.grpc.Serve(lis)
}

func (s *Server) Stop() {
	s.health.Shutdown()
	s.grpc.GracefulStop()
}
