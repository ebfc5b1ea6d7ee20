package nats

import (
	"context"
	"errors"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/dmitrymomot/multicast/core/logger"
	"github.com/dmitrymomot/multicast/core/subject"
	"github.com/dmitrymomot/multicast/pkg/envelope"
)

const defaultPending = 256

// Option configures a connection or bridge.
type Option func(*options)

type options struct {
	logger  *slog.Logger
	pending int
}

// WithLogger sets the logger. If not set, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithPending sets how many received messages Subscribe buffers before the
// client starts dropping them as a slow consumer.
func WithPending(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.pending = n
		}
	}
}

func newOptions(opts []Option) options {
	o := options{logger: slog.Default(), pending: defaultPending}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Publish forwards every signal of src to a NATS subject as a JSON envelope.
// The connection is flushed after a terminal signal so it reaches the server
// before the caller tears the connection down.
func Publish[T any](nc *nats.Conn, subj string, src subject.Observable[T], opts ...Option) (*subject.Subscription, error) {
	o := newOptions(opts)

	send := func(n subject.Notification[T]) {
		data, err := envelope.Encode(n)
		if err == nil {
			err = nc.Publish(subj, data)
		}
		if err == nil && n.Terminal() {
			err = nc.Flush()
		}
		if err != nil {
			o.logger.Error("nats bridge publish failed",
				logger.Channel(subj),
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

// Receiver pumps envelopes from a NATS subscription into a sink on its own goroutine.
type Receiver struct {
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Done is closed when the pump stops.
func (r *Receiver) Done() <-chan struct{} { return r.done }

// Wait blocks until the pump stops and reports why: nil after a terminal
// envelope, the sink's error, or the context error.
func (r *Receiver) Wait() error {
	<-r.done
	return r.err
}

// Close stops the pump, unsubscribes and waits for the pump to exit.
func (r *Receiver) Close() error {
	r.cancel()
	<-r.done
	return nil
}

// Subscribe registers interest in subj, waits for the server to acknowledge it,
// and applies every decoded envelope to sink until a terminal envelope arrives,
// the sink rejects a signal, or ctx ends.
//
// The sink is driven from the receiver's goroutine.
func Subscribe[T any](ctx context.Context, nc *nats.Conn, subj string, sink subject.Sink[T], opts ...Option) (*Receiver, error) {
	o := newOptions(opts)

	msgs := make(chan *nats.Msg, o.pending)
	sub, err := nc.ChanSubscribe(subj, msgs)
	if err != nil {
		return nil, errors.Join(ErrSubscribeFailed, err)
	}
	if err := nc.Flush(); err != nil {
		_ = sub.Unsubscribe()
		return nil, errors.Join(ErrSubscribeFailed, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	r := &Receiver{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(r.done)
		defer func() { _ = sub.Unsubscribe() }()
		r.err = pump(ctx, msgs, subj, sink, o.logger)
	}()

	return r, nil
}

func pump[T any](ctx context.Context, msgs <-chan *nats.Msg, subj string, sink subject.Sink[T], log *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg := <-msgs:
			n, err := envelope.Decode[T](msg.Data)
			if err != nil {
				log.Warn("nats bridge dropped malformed envelope",
					logger.Channel(subj),
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
