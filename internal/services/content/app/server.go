// Package server wires the content service: it preloads the dragon catalog
// on a background task and only then opens the HTTP listener.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"time"

	platformgrpc "github.com/louisbranch/dragon.arena/internal/platform/grpc"
	"github.com/louisbranch/dragon.arena/internal/platform/timeouts"
	"github.com/louisbranch/dragon.arena/internal/services/content/catalog"
	"github.com/louisbranch/dragon.arena/internal/services/content/preload"
)

// HealthService is the gRPC health service name reported by the readiness
// endpoint.
const HealthService = "dragon.arena.content"

// Config defines the inputs for the content server.
type Config struct {
	HTTPAddr          string
	GRPCAddr          string
	PublicDir         string
	DragonsDir        string
	PreloadWorkers    int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration

	// Store receives the preloaded catalog. Nil means a new store.
	Store *catalog.Store
	// Load replaces the directory scan of DragonsDir.
	Load preload.LoadFunc
}

// Server hosts the content HTTP process.
type Server struct {
	httpAddr        string
	grpcAddr        string
	shutdownTimeout time.Duration
	store           *catalog.Store
	load            preload.LoadFunc
	httpServer      *http.Server

	phase     atomic.Int32
	listener  net.Listener
	readiness *platformgrpc.Readiness
}

// NewServer validates config and builds an unstarted server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	load := config.Load
	if load == nil {
		dragonsDir := strings.TrimSpace(config.DragonsDir)
		if dragonsDir == "" {
			return nil, errors.New("dragons directory is required")
		}
		load = preload.NewScanner(dragonsDir, preload.WithWorkers(config.PreloadWorkers)).LoadAll
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}
	store := config.Store
	if store == nil {
		store = catalog.NewStore()
	}

	return &Server{
		httpAddr:        httpAddr,
		grpcAddr:        strings.TrimSpace(config.GRPCAddr),
		shutdownTimeout: config.ShutdownTimeout,
		store:           store,
		load:            load,
		httpServer: &http.Server{
			Handler:           NewHandler(store, config.PublicDir),
			ReadHeaderTimeout: config.ReadHeaderTimeout,
		},
	}, nil
}

// Phase returns the current startup phase.
func (s *Server) Phase() Phase {
	return Phase(s.phase.Load())
}

func (s *Server) setPhase(next Phase) {
	s.phase.Store(int32(next))
	log.Printf("content server phase %s", next)
}

// Store returns the catalog store the server reads from.
func (s *Server) Store() *catalog.Store {
	return s.store
}

// Addr returns the HTTP listener address once listening.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// ReadinessAddr returns the gRPC health listener address when enabled.
func (s *Server) ReadinessAddr() string {
	return s.readiness.Addr()
}

// Start preloads the catalog and opens the HTTP listener. It returns once
// the server is LISTENING or startup has TERMINATED.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return errors.New("content server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}
	if s.Phase() != PhaseInit {
		return fmt.Errorf("content server already started (phase %s)", s.Phase())
	}

	if s.grpcAddr != "" {
		readiness, err := platformgrpc.NewReadiness(s.grpcAddr, HealthService)
		if err != nil {
			s.setPhase(PhaseTerminated)
			return fmt.Errorf("open readiness endpoint: %w", err)
		}
		readiness.Serve()
		s.readiness = readiness
		log.Printf("content readiness listening on %s", readiness.Addr())
	}

	s.setPhase(PhaseSpawningPreload)
	started := time.Now()
	index, err := preload.Start(ctx, s.load).Wait(ctx)
	if err != nil {
		s.setPhase(PhasePreloadFailed)
		s.readiness.Close()
		s.setPhase(PhaseTerminated)
		return fmt.Errorf("preload content: %w", err)
	}
	s.store.SetAll(index)
	s.setPhase(PhasePreloadSucceeded)
	log.Printf("preloaded %d dragons in %s", index.Len(), time.Since(started).Round(time.Millisecond))

	listener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		s.readiness.Close()
		s.setPhase(PhaseTerminated)
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	s.listener = listener
	s.setPhase(PhaseListening)
	s.readiness.MarkServing()
	return nil
}

// Run creates and serves a content server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init content server: %w", err)
	}
	defer server.Close()

	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve content: %w", err)
	}
	return nil
}

// ListenAndServe starts the server and serves HTTP until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}

	serveErr := make(chan error, 1)
	log.Printf("content server listening on %s", s.Addr())
	go func() {
		serveErr <- s.httpServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		s.readiness.Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}

// Close releases server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	s.readiness.Close()
	if s.httpServer != nil {
		if err := s.httpServer.Close(); err != nil {
			log.Printf("close http server: %v", err)
		}
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
}
