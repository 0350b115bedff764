// Package main runs arena client commands against the content server.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	arenacmd "github.com/louisbranch/dragon.arena/internal/cmd/arena"
	"github.com/louisbranch/dragon.arena/internal/platform/config"
)

func main() {
	cfg, err := arenacmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("%v", err)
	}
	log.SetPrefix("[ARENA] ")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := arenacmd.Run(ctx, cfg, os.Stdout); err != nil {
		log.Fatalf("arena: %v", err)
	}
}
