// Package rpc runs the gRPC listener. It serves the standard health service so
// load balancers and orchestrators can probe the process.
package rpc

import (
	"context"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"hiway-api/internal/middleware"
)

// Service is the name reported for the API as a whole.
const Service = "hiway.v1.Dashboard"

type Pinger interface {
	Ping(ctx context.Context) error
}

type Server struct {
	srv    *grpc.Server
	health *health.Server
}

func New(rl *middleware.RateLimiter) *Server {
	srv := grpc.NewServer(
		grpc.ChainUnaryInterceptor(
			middleware.RateLimit(rl),
			middleware.UnaryLogger,
		),
	)
	hs := health.NewServer()
	healthpb.RegisterHealthServer(srv, hs)

	s := &Server{srv: srv, health: hs}
	s.set(healthpb.HealthCheckResponse_NOT_SERVING)
	return s
}

// Check marks the service SERVING when the database answers.
func (s *Server) Check(ctx context.Context, db Pinger) error {
	if err := db.Ping(ctx); err != nil {
		s.set(healthpb.HealthCheckResponse_NOT_SERVING)
		return err
	}
	s.set(healthpb.HealthCheckResponse_SERVING)
	return nil
}

func (s *Server) set(st healthpb.HealthCheckResponse_ServingStatus) {
	s.health.SetServingStatus("", st)
	s.health.SetServingStatus(Service, st)
}

func (s *Server) Serve(lis net.Listener) error {
	return s.srv.Serve(lis)
}

// Stop flips health to NOT_SERVING before draining in-flight calls.
func (s *Server) Stop() {
	s.health.Shutdown()
	s.srv.GracefulStop()
}
