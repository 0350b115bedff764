package grpc

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// Readiness hosts a gRPC health endpoint that reports NOT_SERVING until the
// owning process calls MarkServing.
//
// The listener opens as soon as the readiness server is created so probes get
// an explicit "not ready" answer while startup work is still running.
type Readiness struct {
	service  string
	listener net.Listener
	server   *gogrpc.Server
	health   *health.Server

	serveOnce sync.Once
	serveErr  chan error
	closeOnce sync.Once
}

// NewReadiness listens on addr and registers a health server for service.
func NewReadiness(addr string, service string) (*Readiness, error) {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	server := gogrpc.NewServer(gogrpc.StatsHandler(otelgrpc.NewServerHandler()))
	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_NOT_SERVING)
	healthServer.SetServingStatus(service, grpc_health_v1.HealthCheckResponse_NOT_SERVING)

	return &Readiness{
		service:  service,
		listener: listener,
		server:   server,
		health:   healthServer,
		serveErr: make(chan error, 1),
	}, nil
}

// Addr returns the listener address.
func (r *Readiness) Addr() string {
	if r == nil || r.listener == nil {
		return ""
	}
	return r.listener.Addr().String()
}

// Serve starts answering health checks in the background.
func (r *Readiness) Serve() {
	if r == nil {
		return
	}
	r.serveOnce.Do(func() {
		go func() {
			r.serveErr <- r.server.Serve(r.listener)
		}()
	})
}

// MarkServing flips both the overall and the named service status to SERVING.
func (r *Readiness) MarkServing() {
	if r == nil {
		return
	}
	r.health.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	r.health.SetServingStatus(r.service, grpc_health_v1.HealthCheckResponse_SERVING)
}

// Close stops the health endpoint. Pending checks observe NOT_SERVING first.
func (r *Readiness) Close() {
	if r == nil {
		return
	}
	r.closeOnce.Do(func() {
		r.health.Shutdown()
		r.server.GracefulStop()
		_ = r.listener.Close()
	})
}

const (
	checkTimeout    = time.Second
	firstRetryDelay = 200 * time.Millisecond
	lastRetryDelay  = time.Second
)

// WaitForHealth polls the health endpoint behind conn until service reports
// SERVING or ctx ends. An empty service asks about the whole server.
func WaitForHealth(ctx context.Context, conn *gogrpc.ClientConn, service string, logf func(string, ...any)) error {
	if conn == nil {
		return errors.New("gRPC connection is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if logf == nil {
		logf = func(string, ...any) {}
	}

	client := grpc_health_v1.NewHealthClient(conn)
	delay := firstRetryDelay
	for attempt := 1; ; attempt++ {
		status, err := checkOnce(ctx, client, service)
		switch {
		case err != nil:
			logf("readiness check %d for %q: %v", attempt, service, err)
		case status == grpc_health_v1.HealthCheckResponse_SERVING:
			logf("readiness check %d for %q: SERVING", attempt, service)
			return nil
		default:
			logf("readiness check %d for %q: %s", attempt, service, status)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("wait for %q readiness: %w", service, ctx.Err())
		case <-timer.C:
		}
		delay = min(delay*2, lastRetryDelay)
	}
}

func checkOnce(ctx context.Context, client grpc_health_v1.HealthClient, service string) (grpc_health_v1.HealthCheckResponse_ServingStatus, error) {
	callCtx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	response, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: service})
	if err != nil {
		return grpc_health_v1.HealthCheckResponse_UNKNOWN, err
	}
	return response.GetStatus(), nil
}
