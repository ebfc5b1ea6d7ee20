package websocket

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const defaultWriteTimeout = 10 * time.Second

type config struct {
	upgrader       *websocket.Upgrader
	responseHeader http.Header
	writeTimeout   time.Duration
	logger         *slog.Logger
	onError        func(context.Context, error)
}

// Option configures Stream and Handler.
type Option func(*config)

func WithReadBuffer(size int) Option {
	return func(c *config) {
		c.upgrader.ReadBufferSize = size
	}
}

func WithWriteBuffer(size int) Option {
	return func(c *config) {
		c.upgrader.WriteBufferSize = size
	}
}

func WithHandshakeTimeout(timeout time.Duration) Option {
	return func(c *config) {
		c.upgrader.HandshakeTimeout = timeout
	}
}

func WithOriginCheck(fn func(r *http.Request) bool) Option {
	return func(c *config) {
		c.upgrader.CheckOrigin = fn
	}
}

func WithAllowAnyOrigin() Option {
	return func(c *config) {
		c.upgrader.CheckOrigin = func(*http.Request) bool {
			return true
		}
	}
}

func WithUpgradeHeaders(header http.Header) Option {
	return func(c *config) {
		c.responseHeader = header
	}
}

// WithWriteTimeout bounds every frame write. Defaults to 10s.
func WithWriteTimeout(timeout time.Duration) Option {
	return func(c *config) {
		if timeout > 0 {
			c.writeTimeout = timeout
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithErrorHandler receives upgrade and stream failures from Handler.
// Without one they are logged at Warn.
func WithErrorHandler(fn func(context.Context, error)) Option {
	return func(c *config) {
		c.onError = fn
	}
}

func newConfig(opts []Option) *config {
	c := &config{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
		writeTimeout: defaultWriteTimeout,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
