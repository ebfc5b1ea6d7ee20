package subject

import (
	"log/slog"
	"slices"

	"github.com/dmitrymomot/multicast/core/logger"
)

type state uint8

const (
	stateActive state = iota
	stateCompleted
	stateErrored
)

type terminal struct {
	state state
	err   error
}

type entry[T any] struct {
	observer  Observer[T]
	sub       *Subscription
	removedAt uint64 // clock tick of removal, zero while registered
}

// Subject is a multicast sink and source. Values pushed into it are delivered
// synchronously, in subscription order, to every listener registered at the
// moment of the push.
//
// A Subject is not safe for concurrent use. Calls made from inside a listener
// callback on the same goroutine are safe; see pkg/broadcast for a locked,
// channel-based layer.
type Subject[T any] struct {
	name    string
	logger  *slog.Logger
	onPanic func(*PanicError)

	listeners []*entry[T]
	terminal  terminal
	disposed  bool

	// clock orders registry mutations against deliveries: an entry removed
	// after a delivery started still belongs to that delivery's snapshot.
	clock      uint64
	delivering int
	tombstones int
}

// New creates an active subject with no listeners.
func New[T any](opts ...Option) *Subject[T] {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	return &Subject[T]{
		name:    o.name,
		logger:  o.logger,
		onPanic: o.onPanic,
	}
}

func (s *Subject[T]) subjectLike() {}

// Next delivers v to every registered listener.
// After Error or Complete it is a silent no-op.
func (s *Subject[T]) Next(v T) error {
	if s.disposed {
		return ErrDisposed
	}
	if s.terminal.state != stateActive {
		return nil
	}

	s.deliver(KindNext, func(o Observer[T]) {
		if o.Next != nil {
			o.Next(v)
		}
	})
	return nil
}

// Error latches err as the terminal outcome, delivers it to every registered
// listener and drops the registry. Later subscribers receive err on Subscribe.
func (s *Subject[T]) Error(err error) error {
	if s.disposed {
		return ErrDisposed
	}
	if err == nil {
		return ErrNilError
	}
	if !s.latch(terminal{state: stateErrored, err: err}) {
		return nil
	}

	s.logger.Debug("subject errored",
		logger.Subject(s.name),
		logger.Error(err),
		logger.Subscribers(s.Len()),
	)

	defer s.clear()
	s.deliver(KindError, func(o Observer[T]) {
		if o.Error != nil {
			o.Error(err)
		}
	})
	return nil
}

// Complete latches completion, notifies every registered listener and drops the registry.
func (s *Subject[T]) Complete() error {
	if s.disposed {
		return ErrDisposed
	}
	if !s.latch(terminal{state: stateCompleted}) {
		return nil
	}

	s.logger.Debug("subject completed",
		logger.Subject(s.name),
		logger.Subscribers(s.Len()),
	)

	defer s.clear()
	s.deliver(KindComplete, func(o Observer[T]) {
		if o.Complete != nil {
			o.Complete()
		}
	})
	return nil
}

// Dispose shuts the subject down without signalling anyone. Registered listeners
// are dropped silently; every later sink call and Subscribe fails with ErrDisposed.
func (s *Subject[T]) Dispose() error {
	if s.disposed {
		return ErrDisposed
	}
	s.disposed = true

	s.logger.Debug("subject disposed",
		logger.Subject(s.name),
		logger.Subscribers(s.Len()),
	)

	s.clear()
	return nil
}

// Subscribe attaches o.
//
// On a terminated subject o immediately receives the latched error or completion
// and the returned subscription is already closed. A disposed subject refuses
// with ErrDisposed.
func (s *Subject[T]) Subscribe(o Observer[T]) (*Subscription, error) {
	if s.disposed {
		return nil, ErrDisposed
	}

	switch s.terminal.state {
	case stateErrored:
		if o.Error != nil {
			err := s.terminal.err
			s.call(KindError, func() { o.Error(err) })
		}
		return closedSubscription(), nil
	case stateCompleted:
		if o.Complete != nil {
			s.call(KindComplete, o.Complete)
		}
		return closedSubscription(), nil
	}

	e := &entry[T]{observer: o}
	e.sub = &Subscription{teardown: func() { s.remove(e) }}
	s.tick()
	s.listeners = append(s.listeners, e)
	return e.sub, nil
}

// AsObservable returns a source-only view of s. Holders of the view can
// subscribe but cannot push, terminate or dispose.
func (s *Subject[T]) AsObservable() Observable[T] {
	return &observable[T]{source: s}
}

// AsObserver adapts s so it can listen to another source.
// Signals arriving after s was disposed are dropped.
func (s *Subject[T]) AsObserver() Observer[T] {
	return Observer[T]{
		Next:     func(v T) { _ = s.Next(v) },
		Error:    func(err error) { _ = s.Error(err) },
		Complete: func() { _ = s.Complete() },
	}
}

// Len returns the number of registered listeners.
func (s *Subject[T]) Len() int {
	n := 0
	for _, e := range s.listeners {
		if e.removedAt == 0 {
			n++
		}
	}
	return n
}

// Observed reports whether at least one listener is registered.
func (s *Subject[T]) Observed() bool {
	return s.Len() > 0
}

// Terminated reports whether Error or Complete has been accepted.
func (s *Subject[T]) Terminated() bool {
	return s.terminal.state != stateActive
}

// Err returns the latched error, or nil if the subject is active or completed.
func (s *Subject[T]) Err() error {
	return s.terminal.err
}

// Disposed reports whether Dispose has been called.
func (s *Subject[T]) Disposed() bool {
	return s.disposed
}

// latch stores t as the terminal outcome unless one is already set. First write wins.
func (s *Subject[T]) latch(t terminal) bool {
	if s.terminal.state != stateActive {
		return false
	}
	s.terminal = t
	return true
}

func (s *Subject[T]) tick() uint64 {
	s.clock++
	return s.clock
}

// deliver runs signal for every entry in the registry as it stood when the call
// began. Entries appended during delivery sit past the snapshot length and are
// skipped; entries removed during delivery keep their slot until settle.
func (s *Subject[T]) deliver(kind Kind, signal func(Observer[T])) {
	snapshot := s.listeners
	since := s.tick()
	s.delivering++
	defer s.settle()

	for _, e := range snapshot {
		if s.disposed || (kind == KindNext && s.terminal.state != stateActive) {
			return
		}
		if e.removedAt != 0 && e.removedAt < since {
			continue
		}
		s.call(kind, func() { signal(e.observer) })
	}
}

// settle compacts tombstones once the outermost delivery has returned.
func (s *Subject[T]) settle() {
	s.delivering--
	if s.delivering > 0 || s.tombstones == 0 {
		return
	}
	s.listeners = slices.DeleteFunc(s.listeners, func(e *entry[T]) bool {
		return e.removedAt != 0
	})
	s.tombstones = 0
}

func (s *Subject[T]) remove(e *entry[T]) {
	if e.removedAt != 0 {
		return
	}
	e.removedAt = s.tick()

	if s.delivering > 0 {
		s.tombstones++
		return
	}
	if i := slices.Index(s.listeners, e); i >= 0 {
		s.listeners = slices.Delete(s.listeners, i, i+1)
	}
}

// clear detaches every listener. The backing array is abandoned rather than
// rewritten because an in-flight delivery may still be reading it.
func (s *Subject[T]) clear() {
	at := s.tick()
	for _, e := range s.listeners {
		if e.removedAt == 0 {
			e.removedAt = at
		}
		e.sub.release()
	}
	s.listeners = nil
	s.tombstones = 0
}

func (s *Subject[T]) call(kind Kind, fn func()) {
	if s.onPanic == nil {
		fn()
		return
	}

	defer func() {
		if r := recover(); r != nil {
			perr := &PanicError{Kind: kind, Value: r}
			s.logger.Error("subject listener panicked",
				logger.Subject(s.name),
				logger.Signal(kind.String()),
				logger.Panic(r),
			)
			s.onPanic(perr)
		}
	}()
	fn()
}

// observable hides the sink face of a Subject.
type observable[T any] struct {
	source *Subject[T]
}

func (o *observable[T]) Subscribe(obs Observer[T]) (*Subscription, error) {
	return o.source.Subscribe(obs)
}
