package redis

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/multicast/core/logger"
	"github.com/dmitrymomot/multicast/core/subject"
	"github.com/dmitrymomot/multicast/pkg/envelope"
)

// Option configures a bridge.
type Option func(*options)

const defaultPublishTimeout = 5 * time.Second

type options struct {
	logger         *slog.Logger
	publishTimeout time.Duration
}

// WithLogger sets the bridge logger. If not set, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPublishTimeout bounds each PUBLISH issued by Publish. Defaults to 5s.
func WithPublishTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.publishTimeout = d
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default(), publishTimeout: defaultPublishTimeout}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Publish forwards every signal of src to a Redis pub/sub channel as a JSON envelope.
// PUBLISH runs inside the subject's delivery, on the producer's goroutine; failures
// are logged and do not interrupt delivery to other listeners.
// Unsubscribe the returned subscription to stop forwarding.
//
// ctx contributes values only. Its cancellation does not stop forwarding, so a
// terminal signal pushed during shutdown still reaches Redis; each PUBLISH runs
// under its own timeout (see WithPublishTimeout).
func Publish[T any](ctx context.Context, client redis.UniversalClient, channel string, src subject.Observable[T], opts ...Option) (*subject.Subscription, error) {
	o := newOptions(opts)
	base := context.WithoutCancel(ctx)

	send := func(n subject.Notification[T]) {
		data, err := envelope.Encode(n)
		if err != nil {
			o.logger.Error("redis bridge encode failed",
				logger.Channel(channel),
				logger.Signal(n.Kind.String()),
				logger.Error(err),
			)
			return
		}
		pubCtx, cancel := context.WithTimeout(base, o.publishTimeout)
		defer cancel()
		if err := client.Publish(pubCtx, channel, data).Err(); err != nil {
			o.logger.Error("redis bridge publish failed",
				logger.Channel(channel),
				logger.Signal(n.Kind.String()),
				logger.Error(err),
			)
		}
	}

	return src.Subscribe(subject.Observer[T]{
		Next:     func(v T) { send(subject.OnNext(v)) },
		Error:    func(err error) { send(subject.OnError[T](err)) },
		Complete: func() { send(subject.OnComplete[T]()) },
	})
}

// Receiver pumps envelopes from a channel into a sink on its own goroutine.
type Receiver struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Done is closed when the pump stops.
func (r *Receiver) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the pump stops. It returns nil when a terminal envelope was
// applied, the sink's error if the sink refused a signal, or the reason the
// subscription ended.
func (r *Receiver) Wait() error {
	<-r.done
	return r.err
}

// Close stops the pump and waits for it to exit.
func (r *Receiver) Close() error {
	r.cancel()
	<-r.done
	return nil
}

// Subscribe listens on a Redis pub/sub channel and applies every decoded envelope
// to sink until a terminal envelope arrives, the sink rejects a signal, or ctx ends.
// It returns once Redis has confirmed the subscription, so signals published after
// it returns are not missed.
//
// The sink is driven from the receiver's goroutine. If it is also fed elsewhere,
// the caller must serialize access (see pkg/broadcast).
func Subscribe[T any](ctx context.Context, client redis.UniversalClient, channel string, sink subject.Sink[T], opts ...Option) (*Receiver, error) {
	o := newOptions(opts)

	pubsub := client.Subscribe(ctx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &Receiver{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		defer pubsub.Close()
		r.err = pump(ctx, pubsub.Channel(), channel, sink, o.logger)
		if r.err != nil {
			o.logger.Debug("redis bridge receiver stopped",
				logger.Channel(channel),
				logger.Error(r.err),
			)
		}
	}()

	return r, nil
}

func pump[T any](ctx context.Context, msgs <-chan *redis.Message, channel string, sink subject.Sink[T], log *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				return ErrSubscriptionClosed
			}

			n, err := envelope.Decode[T]([]byte(msg.Payload))
			if err != nil {
				log.Warn("redis bridge dropped malformed envelope",
					logger.Channel(channel),
					logger.Error(err),
				)
				continue
			}
			if err := n.Apply(sink); err != nil {
				return err
			}
			if n.Terminal() {
				return nil
			}
		}
	}
}
