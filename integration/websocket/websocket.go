package websocket

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dmitrymomot/multicast/core/logger"
	"github.com/dmitrymomot/multicast/core/subject"
	"github.com/dmitrymomot/multicast/pkg/broadcast"
	"github.com/dmitrymomot/multicast/pkg/envelope"
)

// CloseReason is sent in the close frame when the broadcaster ended with an error.
const CloseReason = "stream failed"

// Stream writes every message sub receives to conn as a JSON envelope text frame.
//
// When the subscriber's channel closes, Stream sends a final complete envelope
// and a normal closure frame, or an error envelope and an internal-error closure
// frame if the broadcaster was closed with an error. It returns nil in both cases.
// Stream is the only writer of data frames on conn.
func Stream[T any](ctx context.Context, conn *websocket.Conn, sub broadcast.Subscriber[T], opts ...Option) error {
	return stream(ctx, conn, sub, newConfig(opts))
}

func stream[T any](ctx context.Context, conn *websocket.Conn, sub broadcast.Subscriber[T], cfg *config) error {
	msgs := sub.Receive(ctx)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				// A cancelled context also closes the subscriber.
				if err := ctx.Err(); err != nil {
					return err
				}
				return finish[T](conn, sub.Err(), cfg.writeTimeout)
			}
			data, err := envelope.Encode(subject.OnNext(msg.Data))
			if err != nil {
				return err
			}
			if err := write(conn, data, cfg.writeTimeout); err != nil {
				return err
			}
		}
	}
}

func finish[T any](conn *websocket.Conn, cause error, timeout time.Duration) error {
	n := subject.OnComplete[T]()
	code, reason := websocket.CloseNormalClosure, ""
	if cause != nil {
		n = subject.OnError[T](cause)
		code, reason = websocket.CloseInternalServerErr, CloseReason
	}

	data, err := envelope.Encode(n)
	if err != nil {
		return err
	}
	if err := write(conn, data, timeout); err != nil {
		return err
	}
	return conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(timeout),
	)
}

func write(conn *websocket.Conn, data []byte, timeout time.Duration) error {
	if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}

// Handler upgrades each request and streams b to it until the broadcaster
// closes or the client goes away. Frames sent by the client are read and
// discarded so that close and ping control frames are processed.
func Handler[T any](b broadcast.Broadcaster[T], opts ...Option) http.HandlerFunc {
	cfg := newConfig(opts)
	report := cfg.onError
	if report == nil {
		report = func(_ context.Context, err error) {
			cfg.logger.Warn("websocket stream failed",
				logger.Component("websocket"),
				logger.Error(err),
			)
		}
	}

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := cfg.upgrader.Upgrade(w, r, cfg.responseHeader)
		if err != nil {
			report(r.Context(), err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()

		sub := b.Subscribe(ctx)
		defer func() { _ = sub.Close() }()

		cfg.logger.Debug("websocket client attached",
			logger.Component("websocket"),
			logger.SubscriptionID(sub.ID()),
			slog.String("remote_addr", r.RemoteAddr),
		)

		go discardIncoming(conn, cancel)

		if err := stream(ctx, conn, sub, cfg); err != nil && !errors.Is(err, context.Canceled) {
			report(ctx, err)
		}
	}
}

func discardIncoming(conn *websocket.Conn, cancel context.CancelFunc) {
	defer cancel()
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}
