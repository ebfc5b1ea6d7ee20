package broadcast

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/multicast/core/logger"
	"github.com/dmitrymomot/multicast/core/subject"
)

// MemoryBroadcaster is an in-process Broadcaster. A single mutex serializes every
// call into the underlying subject, so producers and subscribers may live on any
// goroutine. Delivery into subscriber buffers never blocks: a full buffer drops
// the message for that subscriber only.
type MemoryBroadcaster[T any] struct {
	mu      sync.Mutex
	subject *subject.Subject[Message[T]]
	buffer  int
	closed  bool

	name    string
	logger  *slog.Logger
	metrics *metrics
}

// Option configures a MemoryBroadcaster.
type Option func(*settings)

type settings struct {
	name      string
	logger    *slog.Logger
	registry  prometheus.Registerer
	namespace string
}

// WithName names the broadcaster in log records.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithLogger sets the logger. If not set, slog.Default() is used.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics registers delivered/dropped counters and a subscriber gauge with reg
// under the given namespace.
func WithMetrics(reg prometheus.Registerer, namespace string) Option {
	return func(s *settings) {
		s.registry = reg
		s.namespace = namespace
	}
}

// NewMemoryBroadcaster creates a broadcaster whose subscribers each buffer up to
// bufferSize messages. A bufferSize below 1 is raised to 1.
func NewMemoryBroadcaster[T any](bufferSize int, opts ...Option) *MemoryBroadcaster[T] {
	s := settings{logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	if bufferSize < 1 {
		bufferSize = 1
	}

	b := &MemoryBroadcaster[T]{
		buffer: bufferSize,
		name:   s.name,
		logger: s.logger,
		subject: subject.New[Message[T]](
			subject.WithName(s.name),
			subject.WithLogger(s.logger),
		),
	}

	if s.registry != nil {
		m, err := newMetrics(s.registry, s.namespace)
		if err != nil {
			b.logger.Warn("broadcast metrics disabled",
				logger.Subject(s.name),
				logger.Error(err),
			)
		} else {
			b.metrics = m
		}
	}

	return b
}

// Broadcast delivers msg to every subscriber attached at the time of the call.
func (b *MemoryBroadcaster[T]) Broadcast(ctx context.Context, msg Message[T]) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBroadcasterClosed
	}
	return b.subject.Next(msg)
}

// Subscribe attaches a new subscriber. Cancelling ctx closes it. Subscribing to a
// closed broadcaster returns a subscriber whose channel is already closed.
func (b *MemoryBroadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	s := &memorySubscriber[T]{
		id:     uuid.NewString(),
		owner:  b,
		ch:     make(chan Message[T], b.buffer),
		done:   make(chan struct{}),
		logger: b.logger,
	}

	b.mu.Lock()
	b.metrics.attach()
	sub, err := b.subject.Subscribe(subject.Observer[Message[T]]{
		Next:     s.offer,
		Error:    s.fail,
		Complete: s.shutdown,
	})
	if err != nil {
		s.shutdown()
	} else {
		s.subscription = sub
	}
	closed := s.closed
	b.mu.Unlock()

	if closed {
		return s
	}

	go s.watch(ctx)
	b.logger.Debug("broadcast subscriber attached",
		logger.Subject(b.name),
		logger.SubscriptionID(s.id),
	)
	return s
}

// Close completes the broadcaster. Every subscriber channel is closed.
func (b *MemoryBroadcaster[T]) Close() error {
	return b.terminate(func() error { return b.subject.Complete() })
}

// CloseWithError terminates the broadcaster with err. Subscribers' channels are
// closed and their Err returns err.
func (b *MemoryBroadcaster[T]) CloseWithError(err error) error {
	return b.terminate(func() error { return b.subject.Error(err) })
}

func (b *MemoryBroadcaster[T]) terminate(fn func() error) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	if err := fn(); err != nil {
		return err
	}
	b.closed = true
	return nil
}

// Subscribers returns the number of attached subscribers.
func (b *MemoryBroadcaster[T]) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.subject.Len()
}

// memorySubscriber owns a buffered channel. Every field below owner is guarded by owner.mu.
type memorySubscriber[T any] struct {
	id     string
	owner  *MemoryBroadcaster[T]
	logger *slog.Logger

	ch           chan Message[T]
	done         chan struct{}
	subscription *subject.Subscription
	closed       bool
	err          error
}

func (s *memorySubscriber[T]) ID() string {
	return s.id
}

func (s *memorySubscriber[T]) Receive(context.Context) <-chan Message[T] {
	return s.ch
}

func (s *memorySubscriber[T]) Err() error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()
	return s.err
}

func (s *memorySubscriber[T]) Close() error {
	s.owner.mu.Lock()
	defer s.owner.mu.Unlock()

	if s.closed {
		return ErrSubscriberClosed
	}
	s.shutdown()
	return nil
}

// offer runs inside subject delivery, under owner.mu.
func (s *memorySubscriber[T]) offer(msg Message[T]) {
	select {
	case s.ch <- msg:
		s.owner.metrics.deliver()
	default:
		s.owner.metrics.drop()
		s.logger.Debug("broadcast message dropped",
			logger.Subject(s.owner.name),
			logger.SubscriptionID(s.id),
		)
	}
}

func (s *memorySubscriber[T]) fail(err error) {
	s.err = err
	s.shutdown()
}

// shutdown must be called with owner.mu held.
func (s *memorySubscriber[T]) shutdown() {
	if s.closed {
		return
	}
	s.closed = true
	s.subscription.Unsubscribe()
	close(s.ch)
	close(s.done)
	s.owner.metrics.detach()
}

func (s *memorySubscriber[T]) watch(ctx context.Context) {
	select {
	case <-ctx.Done():
		if err := s.Close(); err == nil {
			s.logger.Debug("broadcast subscriber released by context",
				logger.SubscriptionID(s.id),
				logger.Error(ctx.Err()),
			)
		}
	case <-s.done:
	}
}
