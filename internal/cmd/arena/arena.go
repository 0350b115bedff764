// Package arena parses arena command flags and runs arena client
// subcommands against the content server.
package arena

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	entrypoint "github.com/louisbranch/dragon.arena/internal/platform/cmd"
	platformgrpc "github.com/louisbranch/dragon.arena/internal/platform/grpc"
	"github.com/louisbranch/dragon.arena/internal/platform/requestctx"
	"github.com/louisbranch/dragon.arena/internal/platform/timeouts"
	"github.com/louisbranch/dragon.arena/internal/services/arena/battle"
	"github.com/louisbranch/dragon.arena/internal/services/arena/registration"
	"github.com/louisbranch/dragon.arena/internal/services/arena/roster"
	server "github.com/louisbranch/dragon.arena/internal/services/content/app"
	"github.com/louisbranch/dragon.arena/internal/services/shared/loader"
)

// Usage lists the arena subcommands.
const Usage = `usage: arena [flags] <command>

commands:
  dragons                          list every dragon
  dragon <id>                      show one dragon
  battle create                    open a new lobby
  battle join <id> [user] [team]   join a battle (user defaults to a free seat)
  battle get <id>                  show a battle
  uuid generate                    fetch a registration token
  uuid validate <token>            check a registration token
  uuid consume <token>             redeem a registration token`

// Config holds arena command configuration.
type Config struct {
	APIURL      string        `env:"DRAGON_ARENA_API_URL"`
	Origin      string        `env:"DRAGON_ARENA_ORIGIN"         envDefault:"http://localhost:3000"`
	BearerToken string        `env:"DRAGON_ARENA_BEARER_TOKEN"`
	Coalesce    bool          `env:"DRAGON_ARENA_LOADER_COALESCE"`
	Timeout     time.Duration `env:"DRAGON_ARENA_LOADER_TIMEOUT" envDefault:"10s"`
	HealthAddr  string        `env:"DRAGON_ARENA_CONTENT_HEALTH_ADDR"`
	HealthWait  time.Duration `env:"DRAGON_ARENA_CONTENT_HEALTH_WAIT"`

	// Args is the subcommand and its arguments.
	Args []string
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}

	fs.StringVar(&cfg.APIURL, "api-url", cfg.APIURL, "content server base URL (empty uses the origin)")
	fs.StringVar(&cfg.Origin, "origin", cfg.Origin, "origin used when no API URL is set")
	fs.StringVar(&cfg.BearerToken, "bearer-token", cfg.BearerToken, "bearer token sent with every request")
	fs.BoolVar(&cfg.Coalesce, "coalesce", cfg.Coalesce, "share in-flight GETs for the same endpoint")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "per-request timeout (0 disables it)")
	fs.StringVar(&cfg.HealthAddr, "wait-health", cfg.HealthAddr, "content gRPC health address to wait on before running")
	fs.DurationVar(&cfg.HealthWait, "health-wait", cfg.HealthWait, "maximum time to wait for content readiness")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	cfg.Args = fs.Args()
	if len(cfg.Args) == 0 {
		return Config{}, errors.New(Usage)
	}
	if cfg.HealthWait <= 0 {
		cfg.HealthWait = timeouts.GRPCHealthWait
	}
	return cfg, nil
}

// Run executes the configured subcommand and writes its JSON result to out.
// Every request of one invocation shares a request id.
func Run(ctx context.Context, cfg Config, out io.Writer) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceArena, func(ctx context.Context) error {
		ctx = requestctx.WithRequestID(ctx, uuid.NewString())
		if addr := strings.TrimSpace(cfg.HealthAddr); addr != "" {
			conn, err := platformgrpc.DialWithHealth(ctx, nil, addr, server.HealthService, cfg.HealthWait, log.Printf)
			if err != nil {
				return fmt.Errorf("wait for content: %w", err)
			}
			if err := conn.Close(); err != nil {
				log.Printf("close health connection: %v", err)
			}
		}

		apiURL := strings.TrimSpace(cfg.APIURL)
		l := loader.New(loader.Config{
			BaseURL:     func() string { return apiURL },
			Origin:      cfg.Origin,
			BearerToken: cfg.BearerToken,
			Coalesce:    cfg.Coalesce,
			Timeout:     cfg.Timeout,
		})
		result, err := dispatch(ctx, l, cfg.Args)
		if err != nil {
			return err
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return fmt.Errorf("write result: %w", err)
		}
		return nil
	})
}

func dispatch(ctx context.Context, l *loader.Loader, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errors.New(Usage)
	}
	switch args[0] {
	case "dragons":
		return roster.NewClient(l).List(ctx)
	case "dragon":
		if len(args) < 2 {
			return nil, errors.New("usage: arena dragon <id>")
		}
		return roster.NewClient(l).Get(ctx, args[1])
	case "battle":
		return dispatchBattle(ctx, battle.NewClient(l), args[1:])
	case "uuid":
		return dispatchToken(ctx, registration.NewClient(l), args[1:])
	default:
		return nil, fmt.Errorf("unknown command %q\n%s", args[0], Usage)
	}
}

func dispatchBattle(ctx context.Context, client *battle.Client, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: arena battle create|join|get")
	}
	switch args[0] {
	case "create":
		return client.CreateBattle(ctx)
	case "get":
		if len(args) < 2 {
			return nil, errors.New("usage: arena battle get <id>")
		}
		return client.GetBattle(ctx, args[1])
	case "join":
		if len(args) < 2 {
			return nil, errors.New("usage: arena battle join <id> [user] [team]")
		}
		id := args[1]
		var userID, teamID string
		if len(args) > 2 {
			userID = args[2]
		}
		if len(args) > 3 {
			teamID = args[3]
		}
		if strings.TrimSpace(userID) == "" {
			current, err := client.GetBattle(ctx, id)
			if err != nil {
				return nil, fmt.Errorf("read battle %s: %w", id, err)
			}
			userID = battle.PickAvailablePlayers(nil, current.PlayerIDs, 1)[0]
		}
		return client.JoinBattle(ctx, id, userID, teamID)
	default:
		return nil, fmt.Errorf("unknown battle command %q", args[0])
	}
}

func dispatchToken(ctx context.Context, client *registration.Client, args []string) (any, error) {
	if len(args) == 0 {
		return nil, errors.New("usage: arena uuid generate|validate|consume")
	}
	switch args[0] {
	case "generate":
		token, err := client.Fetch(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]string{"uuid": token}, nil
	case "validate":
		if len(args) < 2 {
			return nil, errors.New("usage: arena uuid validate <token>")
		}
		return client.Validate(ctx, args[1])
	case "consume":
		if len(args) < 2 {
			return nil, errors.New("usage: arena uuid consume <token>")
		}
		if err := client.Consume(ctx, args[1]); err != nil {
			return nil, err
		}
		return map[string]any{"uuid": args[1], "consumed": true}, nil
	default:
		return nil, fmt.Errorf("unknown uuid command %q", args[0])
	}
}
