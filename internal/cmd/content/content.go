// Package content parses content command flags and composes the content
// server.
package content

import (
	"context"
	"flag"
	"fmt"

	entrypoint "github.com/louisbranch/dragon.arena/internal/platform/cmd"
	server "github.com/louisbranch/dragon.arena/internal/services/content/app"
	"github.com/louisbranch/dragon.arena/internal/services/content/preload"
)

// Config holds content command configuration.
type Config struct {
	HTTPAddr       string `env:"DRAGON_ARENA_CONTENT_HTTP_ADDR"       envDefault:":3000"`
	GRPCAddr       string `env:"DRAGON_ARENA_CONTENT_GRPC_ADDR"`
	PublicDir      string `env:"DRAGON_ARENA_CONTENT_PUBLIC_DIR"      envDefault:"public"`
	DragonsDir     string `env:"DRAGON_ARENA_CONTENT_DRAGONS_DIR"     envDefault:"public/api/dragons"`
	PreloadWorkers int    `env:"DRAGON_ARENA_CONTENT_PRELOAD_WORKERS" envDefault:"4"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "content HTTP listen address")
	fs.StringVar(&cfg.GRPCAddr, "grpc-addr", cfg.GRPCAddr, "gRPC health listen address (empty disables it)")
	fs.StringVar(&cfg.PublicDir, "public-dir", cfg.PublicDir, "directory served as static files")
	fs.StringVar(&cfg.DragonsDir, "dragons-dir", cfg.DragonsDir, "dragon catalog root preloaded at startup")
	fs.IntVar(&cfg.PreloadWorkers, "preload-workers", cfg.PreloadWorkers, "categories scanned concurrently during preload")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	if cfg.PreloadWorkers < 1 {
		cfg.PreloadWorkers = preload.DefaultWorkers
	}
	return cfg, nil
}

// Run preloads the catalog and serves it until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceContent, func(ctx context.Context) error {
		if err := server.Run(ctx, server.Config{
			HTTPAddr:       cfg.HTTPAddr,
			GRPCAddr:       cfg.GRPCAddr,
			PublicDir:      cfg.PublicDir,
			DragonsDir:     cfg.DragonsDir,
			PreloadWorkers: cfg.PreloadWorkers,
		}); err != nil {
			return fmt.Errorf("serve content: %w", err)
		}
		return nil
	})
}
