package main

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/multicast/core/health"
	"github.com/dmitrymomot/multicast/core/logger"
	"github.com/dmitrymomot/multicast/core/subject"
	natsbridge "github.com/dmitrymomot/multicast/integration/nats"
	redisbridge "github.com/dmitrymomot/multicast/integration/redis"
	wsbridge "github.com/dmitrymomot/multicast/integration/websocket"
	"github.com/dmitrymomot/multicast/pkg/broadcast"
)

// Tick is the value the demo feed emits.
type Tick struct {
	Seq int       `json:"seq"`
	At  time.Time `json:"at"`
}

// feed owns the tick subject. Only the goroutine running loop pushes into it.
type feed struct {
	ticks    *subject.Subject[Tick]
	out      *broadcast.MemoryBroadcaster[Tick]
	registry *prometheus.Registry
	checks   map[string]health.Check
	closers  []func()
	log      *slog.Logger
}

func newFeed(cfg Config, log *slog.Logger) *feed {
	reg := prometheus.NewRegistry()
	f := &feed{
		ticks: subject.New[Tick](subject.WithName("ticks"), subject.WithLogger(log)),
		out: broadcast.NewMemoryBroadcaster[Tick](cfg.Buffer,
			broadcast.WithName("ticks"),
			broadcast.WithLogger(log),
			broadcast.WithMetrics(reg, "multicast"),
		),
		registry: reg,
		checks:   map[string]health.Check{},
		log:      log,
	}

	// The broadcaster is the thread-safe fan-out for WebSocket clients.
	_, _ = f.ticks.Subscribe(subject.Observer[Tick]{
		Next: func(t Tick) {
			_ = f.out.Broadcast(context.Background(), broadcast.Message[Tick]{Data: t})
		},
		Error:    func(err error) { _ = f.out.CloseWithError(err) },
		Complete: func() { _ = f.out.Close() },
	})
	return f
}

// bridge forwards ticks to an external bus.
func (f *feed) bridge(ctx context.Context, cfg Config) error {
	switch cfg.Bridge {
	case "":
		return nil
	case "redis":
		client, err := redisbridge.Connect(ctx, cfg.Redis)
		if err != nil {
			return err
		}
		if _, err := redisbridge.Publish(ctx, client, cfg.Redis.Channel, f.ticks.AsObservable(),
			redisbridge.WithLogger(f.log)); err != nil {
			_ = client.Close()
			return err
		}
		f.checks["redis"] = redisbridge.Healthcheck(client)
		f.closers = append(f.closers, func() { _ = client.Close() })
	case "nats":
		nc, err := natsbridge.Connect(cfg.NATS, natsbridge.WithLogger(f.log))
		if err != nil {
			return err
		}
		if _, err := natsbridge.Publish(nc, cfg.NATS.Subject, f.ticks.AsObservable(),
			natsbridge.WithLogger(f.log)); err != nil {
			nc.Close()
			return err
		}
		f.checks["nats"] = natsbridge.Healthcheck(nc)
		f.closers = append(f.closers, func() { drain(nc) })
	default:
		return errUnknownBridge
	}

	f.log.Info("feed bridged", logger.Component("feed"), slog.String("bridge", cfg.Bridge))
	return nil
}

func drain(nc *nats.Conn) {
	if err := nc.Drain(); err != nil {
		nc.Close()
	}
}

// loop pushes a tick every interval until ctx ends, then completes the subject.
func (f *feed) loop(ctx context.Context, interval time.Duration) func() error {
	return func() error {
		defer func() {
			for _, c := range f.closers {
				c()
			}
		}()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for seq := 1; ; seq++ {
			select {
			case <-ctx.Done():
				return f.ticks.Complete()
			case now := <-ticker.C:
				if err := f.ticks.Next(Tick{Seq: seq, At: now.UTC()}); err != nil {
					return err
				}
			}
		}
	}
}

func (f *feed) handler(opts ...wsbridge.Option) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("GET /ws", wsbridge.Handler[Tick](f.out, opts...))
	mux.Handle("GET /metrics", promhttp.HandlerFor(f.registry, promhttp.HandlerOpts{}))
	mux.HandleFunc("GET /health/live", health.Liveness)
	mux.Handle("GET /health/ready", health.Readiness(f.log, f.checks))
	return mux
}
