package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const probeTimeout = 2 * time.Second

// Probe answers plain HTTP health checks by asking the gRPC health service,
// for load balancers that cannot speak gRPC.
type Probe struct {
	conn   *grpc.ClientConn
	client healthpb.HealthClient
}

// Dial connects to the gRPC server at addr (e.g. "localhost:50051").
func Dial(addr string, opts ...grpc.DialOption) (*Probe, error) {
	opts = append([]grpc.DialOption{grpc.WithTransportCredentials(insecure.NewCredentials())}, opts...)
	conn, err := grpc.NewClient(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("health probe dial: %w", err)
	}
	return &Probe{conn: conn, client: healthpb.NewHealthClient(conn)}, nil
}

func (p *Probe) Close() error { return p.conn.Close() }

func (p *Probe) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), probeTimeout)
	defer cancel()

	code, st := http.StatusOK, "SERVING"
	resp, err := p.client.Check(ctx, &healthpb.HealthCheckRequest{Service: Service})
	switch {
	case err != nil:
		log.Printf("health probe: %v", err)
		code, st = http.StatusServiceUnavailable, "UNKNOWN"
	case resp.Status != healthpb.HealthCheckResponse_SERVING:
		code, st = http.StatusServiceUnavailable, resp.Status.String()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"status": st})
}
