// Package cmd holds what dragon.arena commands share at startup: loading
// env defaults before flags, and wrapping a command in the tracing
// lifecycle.
package cmd

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/louisbranch/dragon.arena/internal/platform/config"
	"github.com/louisbranch/dragon.arena/internal/platform/otel"
	"github.com/louisbranch/dragon.arena/internal/platform/timeouts"
)

// Service names used for telemetry resources and log prefixes.
const (
	ServiceContent = "content"
	ServiceArena   = "arena"
)

// SetupFunc installs telemetry for a service and returns its flush function.
type SetupFunc func(ctx context.Context, service string) (shutdown func(context.Context) error, err error)

type runSettings struct {
	setup           SetupFunc
	shutdownTimeout time.Duration
}

// RunOption adjusts RunWithTelemetry.
type RunOption func(*runSettings)

// WithSetup replaces otel.Setup.
func WithSetup(setup SetupFunc) RunOption {
	return func(s *runSettings) {
		if setup != nil {
			s.setup = setup
		}
	}
}

// WithShutdownTimeout bounds the telemetry flush after run returns.
func WithShutdownTimeout(timeout time.Duration) RunOption {
	return func(s *runSettings) {
		if timeout > 0 {
			s.shutdownTimeout = timeout
		}
	}
}

// ParseConfig fills cfg from the environment. Commands register their
// flags afterwards, with the env values as flag defaults.
func ParseConfig[T any](cfg *T) error {
	if cfg == nil {
		return errors.New("config target is required")
	}
	return config.ParseEnv(cfg)
}

// ParseArgs parses args into fs. Nil args parse as empty.
func ParseArgs(fs *flag.FlagSet, args []string) error {
	if fs == nil {
		return errors.New("flag parser is required")
	}
	if args == nil {
		args = []string{}
	}
	return fs.Parse(args)
}

// RunWithTelemetry sets up tracing for service, calls run with ctx, and
// flushes pending spans once run returns, whatever its outcome.
func RunWithTelemetry(ctx context.Context, service string, run func(context.Context) error, opts ...RunOption) error {
	if service = strings.TrimSpace(service); service == "" {
		return errors.New("service name is required")
	}
	if run == nil {
		return errors.New("run function is required")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	settings := runSettings{setup: otel.Setup, shutdownTimeout: timeouts.OTelShutdown}
	for _, opt := range opts {
		opt(&settings)
	}

	shutdown, err := settings.setup(ctx, service)
	if err != nil {
		return fmt.Errorf("setup telemetry for %s: %w", service, err)
	}
	defer flush(service, shutdown, settings.shutdownTimeout)
	return run(ctx)
}

func flush(service string, shutdown func(context.Context) error, timeout time.Duration) {
	if shutdown == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Printf("%s otel shutdown: %v", service, err)
	}
}
