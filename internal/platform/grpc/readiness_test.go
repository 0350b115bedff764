package grpc

import (
	"context"
	"testing"
	"time"

	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

const testService = "dragon.arena.test"

func TestWaitForHealthServing(t *testing.T) {
	readiness := startReadiness(t)
	readiness.MarkServing()

	conn := dialHealthServer(t, readiness.Addr())
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := WaitForHealth(ctx, conn, testService, nil); err != nil {
		t.Fatalf("wait for health: %v", err)
	}
}

func TestWaitForHealthTransitionsToServing(t *testing.T) {
	readiness := startReadiness(t)

	conn := dialHealthServer(t, readiness.Addr())
	defer conn.Close()

	go func() {
		time.Sleep(200 * time.Millisecond)
		readiness.MarkServing()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	var logged []string
	logf := func(format string, args ...any) { logged = append(logged, format) }
	if err := WaitForHealth(ctx, conn, "", logf); err != nil {
		t.Fatalf("wait for health after transition: %v", err)
	}
	if len(logged) < 2 {
		t.Fatalf("expected waiting and serving log lines, got %v", logged)
	}
}

func TestWaitForHealthRespectsContext(t *testing.T) {
	readiness := startReadiness(t)

	conn := dialHealthServer(t, readiness.Addr())
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	if err := WaitForHealth(ctx, conn, testService, nil); err == nil {
		t.Fatal("expected context error, got nil")
	}
}

func TestWaitForHealthRequiresConnection(t *testing.T) {
	if err := WaitForHealth(context.Background(), nil, "", nil); err == nil {
		t.Fatal("expected error for nil connection")
	}
}

func TestReadinessNilSafe(t *testing.T) {
	var readiness *Readiness
	readiness.Serve()
	readiness.MarkServing()
	readiness.Close()
	if readiness.Addr() != "" {
		t.Fatal("expected empty addr for nil readiness")
	}
}

func startReadiness(t *testing.T) *Readiness {
	t.Helper()

	readiness, err := NewReadiness("127.0.0.1:0", testService)
	if err != nil {
		t.Fatalf("new readiness: %v", err)
	}
	readiness.Serve()
	t.Cleanup(readiness.Close)
	return readiness
}

func dialHealthServer(t *testing.T, addr string) *gogrpc.ClientConn {
	t.Helper()

	conn, err := gogrpc.NewClient(
		addr,
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial health server: %v", err)
	}

	return conn
}
