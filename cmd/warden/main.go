package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/carlmjohnson/versioninfo"
	_ "github.com/joho/godotenv/autoload"
	cli "github.com/urfave/cli/v2"
	"golang.org/x/time/rate"

	"github.com/wardenbot/warden/admission"
	"github.com/wardenbot/warden/admission/banstore"
	"github.com/wardenbot/warden/admission/configstore"
	"github.com/wardenbot/warden/admission/lockstore"
	"github.com/wardenbot/warden/admission/namestore"
	"github.com/wardenbot/warden/platform"
)

func main() {
	if err := run(os.Args); err != nil {
		slog.Error("exiting", "err", err)
		os.Exit(-1)
	}
}

func run(args []string) error {

	app := cli.App{
		Name:    "warden",
		Usage:   "admission control daemon (guards the gates)",
		Version: versioninfo.Short(),
	}

	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:     "gateway-host",
			Usage:    "scheme, hostname, and port of the platform gateway",
			Value:    "http://localhost:6100",
			EnvVars:  []string{"WARDEN_GATEWAY_HOST"},
			Required: false,
		},
		&cli.StringFlag{
			Name:    "gateway-auth-token",
			Usage:   "bearer token for the platform gateway",
			EnvVars: []string{"WARDEN_GATEWAY_AUTH_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "bot-user-id",
			Usage:   "user id of the deployment's own platform account",
			EnvVars: []string{"WARDEN_BOT_USER_ID"},
		},
	}

	app.Commands = []*cli.Command{
		runCmd,
	}

	return app.Run(args)
}

var runCmd = &cli.Command{
	Name:  "run",
	Usage: "run the service",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "database-url",
			Value:   "sqlite://data/warden/warden.db",
			EnvVars: []string{"DATABASE_URL"},
		},
		&cli.IntFlag{
			Name:    "max-db-connections",
			EnvVars: []string{"MAX_DB_CONNECTIONS"},
			Value:   40,
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for the shared ban cache; omit for in-process caching",
			EnvVars: []string{"WARDEN_REDIS_URL"},
		},
		&cli.StringFlag{
			Name:    "bind",
			Usage:   "IP or address, and port, to listen on for the admin API",
			Value:   ":6200",
			EnvVars: []string{"WARDEN_BIND"},
		},
		&cli.StringFlag{
			Name:    "metrics-listen",
			Usage:   "IP or address, and port, to listen on for metrics APIs",
			Value:   ":6201",
			EnvVars: []string{"WARDEN_METRICS_LISTEN"},
		},
		&cli.StringFlag{
			Name:    "admin-auth-token",
			Usage:   "bearer token required on admin API requests",
			EnvVars: []string{"WARDEN_ADMIN_AUTH_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "bot-owner-id",
			Usage:   "user id of the deployment operator's account",
			EnvVars: []string{"WARDEN_BOT_OWNER_ID"},
		},
		&cli.StringFlag{
			Name:    "word-lists-json",
			Usage:   "path to JSON file with username filter word lists",
			EnvVars: []string{"WARDEN_WORD_LISTS_JSON"},
		},
		&cli.StringFlag{
			Name:    "slack-webhook-url",
			Usage:   "Slack webhook URL for validator fault notifications",
			EnvVars: []string{"WARDEN_SLACK_WEBHOOK_URL"},
		},
		&cli.IntFlag{
			Name:    "purge-kick-rate-limit",
			Usage:   "max purge kicks per second against the platform",
			Value:   5,
			EnvVars: []string{"WARDEN_PURGE_KICK_RATE_LIMIT"},
		},
	},
	Action: func(cctx *cli.Context) error {
		ctx := context.Background()
		logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		}))
		slog.SetDefault(logger)

		shutdownOTEL, err := configOTEL("warden")
		if err != nil {
			return fmt.Errorf("configuring trace exporter: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := shutdownOTEL(ctx); err != nil {
				logger.Error("failed to shutdown trace exporter", "err", err)
			}
		}()

		db, err := setupDatabase(cctx.String("database-url"), cctx.Int("max-db-connections"))
		if err != nil {
			return err
		}

		configs, err := configstore.NewGormConfigStore(db)
		if err != nil {
			return err
		}
		names, err := namestore.NewGormNameStore(db)
		if err != nil {
			return err
		}
		locks, err := lockstore.NewGormLockStore(db)
		if err != nil {
			return err
		}

		var bans banstore.BanStore
		bans, err = banstore.NewGormBanStore(db)
		if err != nil {
			return err
		}
		if redisURL := cctx.String("redis-url"); redisURL != "" {
			bans, err = banstore.NewRedisBanStore(bans, redisURL, 30*time.Minute)
			if err != nil {
				return fmt.Errorf("initializing redis ban cache: %w", err)
			}
			logger.Info("using redis ban cache", "ttl", "30m")
		} else {
			bans = banstore.NewCachedBanStore(bans, 5_000, 30*time.Minute)
		}

		var chainOpts admission.ChainOpts
		if p := cctx.String("word-lists-json"); p != "" {
			if err := admission.LoadWordListsJSON(p, &chainOpts); err != nil {
				return fmt.Errorf("loading word lists: %w", err)
			}
			logger.Info("loaded word lists from JSON", "path", p)
		}
		validators, err := admission.DefaultValidators(chainOpts)
		if err != nil {
			return fmt.Errorf("building validator chain: %w", err)
		}

		var notifier admission.Notifier
		if hook := cctx.String("slack-webhook-url"); hook != "" {
			notifier = &admission.SlackNotifier{SlackWebhookURL: hook}
		}

		gateway := platform.NewGatewayClient(
			cctx.String("gateway-host"),
			cctx.String("gateway-auth-token"),
			cctx.String("bot-user-id"),
			logger,
		)

		engine := &admission.Engine{
			Logger:      logger,
			Platform:    gateway,
			Configs:     configs,
			Bans:        bans,
			Names:       names,
			Lockdowns:   admission.NewLockdownController(locks, logger),
			Validators:  validators,
			Notifier:    notifier,
			BotOwnerID:  cctx.String("bot-owner-id"),
			KickLimiter: rate.NewLimiter(rate.Limit(cctx.Int("purge-kick-rate-limit")), 1),
		}

		srv := NewServer(engine, configs, Config{
			Logger:         logger,
			AdminAuthToken: cctx.String("admin-auth-token"),
		})

		go func() {
			if err := srv.RunMetrics(cctx.String("metrics-listen")); err != nil {
				slog.Error("failed to start metrics endpoint", "error", err)
				panic(fmt.Errorf("failed to start metrics endpoint: %w", err))
			}
		}()

		if err := srv.Run(ctx, cctx.String("bind")); err != nil {
			return fmt.Errorf("failed to run admission service: %w", err)
		}
		return nil
	},
}
