package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrymomot/multicast/core/config"
	"github.com/dmitrymomot/multicast/core/logger"
	"github.com/dmitrymomot/multicast/core/server"
	natsbridge "github.com/dmitrymomot/multicast/integration/nats"
	redisbridge "github.com/dmitrymomot/multicast/integration/redis"
	wsbridge "github.com/dmitrymomot/multicast/integration/websocket"
)

var errUnknownBridge = errors.New("unknown bridge, want redis or nats")

// Config is the demo configuration, loaded from the environment (and .env when present).
type Config struct {
	AppName      string        `env:"APP_NAME" envDefault:"multicast-demo"`
	Production   bool          `env:"APP_PRODUCTION" envDefault:"false"`
	Serve        bool          `env:"DEMO_SERVE" envDefault:"false"`
	TickInterval time.Duration `env:"DEMO_TICK_INTERVAL" envDefault:"1s"`
	Buffer       int           `env:"DEMO_BUFFER" envDefault:"64"`
	Bridge       string        `env:"DEMO_BRIDGE"`

	Server server.Config
	Redis  redisbridge.Config
	NATS   natsbridge.Config
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var cfg Config
	config.MustLoad(&cfg)

	logOpt := logger.WithDevelopment(cfg.AppName)
	if cfg.Production {
		logOpt = logger.WithProduction(cfg.AppName)
	}
	log := logger.New(logOpt)

	if err := runScenarios(os.Stdout, log); err != nil {
		log.Error("scenario failed", logger.Error(err))
		os.Exit(1)
	}
	if !cfg.Serve {
		return
	}

	f := newFeed(cfg, log)
	if err := f.bridge(ctx, cfg); err != nil {
		log.Error("failed to bridge feed", logger.Component("feed"), logger.Error(err))
		os.Exit(1)
	}

	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
	if err != nil {
		log.Error("failed to create server", logger.Component("server"), logger.Error(err))
		os.Exit(1)
	}

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(f.loop(ctx, cfg.TickInterval))
	eg.Go(srv.Run(ctx, f.handler(
		wsbridge.WithLogger(log),
		wsbridge.WithAllowAnyOrigin(),
	)))

	if err := eg.Wait(); err != nil {
		log.Error("demo stopped with error", logger.Error(err))
		os.Exit(1)
	}
}
