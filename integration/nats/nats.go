package nats

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/dmitrymomot/multicast/core/logger"
)

// Config holds the NATS connection settings.
type Config struct {
	URL            string        `env:"NATS_URL" envDefault:"nats://127.0.0.1:4222"`
	Name           string        `env:"NATS_CLIENT_NAME" envDefault:"multicast"`
	ConnectTimeout time.Duration `env:"NATS_CONNECT_TIMEOUT" envDefault:"5s"`
	MaxReconnects  int           `env:"NATS_MAX_RECONNECTS" envDefault:"60"`
	ReconnectWait  time.Duration `env:"NATS_RECONNECT_WAIT" envDefault:"2s"`
	Subject        string        `env:"NATS_SUBJECT" envDefault:"multicast"`
}

// Connect dials the server. Connection state changes are logged through the
// logger given with WithLogger.
func Connect(cfg Config, opts ...Option) (*nats.Conn, error) {
	if cfg.URL == "" {
		return nil, ErrEmptyURL
	}
	o := newOptions(opts)
	log := o.logger.With(logger.Component("nats"))

	natsOpts := []nats.Option{
		nats.Name(cfg.Name),
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				log.Warn("nats disconnected", logger.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected", slog.String("url", nc.ConnectedUrlRedacted()))
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			log.Debug("nats connection closed")
		}),
	}
	if cfg.ConnectTimeout > 0 {
		natsOpts = append(natsOpts, nats.Timeout(cfg.ConnectTimeout))
	}
	if cfg.ReconnectWait > 0 {
		natsOpts = append(natsOpts, nats.ReconnectWait(cfg.ReconnectWait))
	}

	nc, err := nats.Connect(cfg.URL, natsOpts...)
	if err != nil {
		return nil, errors.Join(ErrConnectFailed, err)
	}
	return nc, nil
}

// Healthcheck returns a function that round-trips a PING to the server.
func Healthcheck(nc *nats.Conn) func(context.Context) error {
	return func(ctx context.Context) error {
		if !nc.IsConnected() {
			return errors.Join(ErrHealthcheckFailed, ErrNotConnected)
		}
		if _, ok := ctx.Deadline(); !ok {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
			defer cancel()
		}
		if err := nc.FlushWithContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
