// Package subject provides a multicast primitive that is both a sink and a source.
//
// A Subject accepts values, at most one terminal signal (an error or a completion)
// and an explicit Dispose. Every signal is fanned out live and synchronously to the
// listeners registered at that moment. There is no replay: a listener only sees
// values pushed after it subscribed.
//
// # Usage
//
//	s := subject.New[string](subject.WithName("orders"))
//
//	sub, err := s.Subscribe(subject.Observer[string]{
//		Next:     func(v string) { fmt.Println("got", v) },
//		Error:    func(err error) { fmt.Println("failed:", err) },
//		Complete: func() { fmt.Println("done") },
//	})
//	if err != nil {
//		return err
//	}
//	defer sub.Unsubscribe()
//
//	_ = s.Next("created")
//	_ = s.Next("paid")
//	_ = s.Complete()
//
// Any Observer callback may be nil; the corresponding signal is dropped for that listener.
// Subscribing the same Observer twice registers two independent listeners.
//
// # Lifecycle
//
// A subject starts active. Error or Complete moves it to a terminal state exactly
// once; the first call wins and later ones are no-ops. After termination:
//
//   - Next is a silent no-op.
//   - Subscribe succeeds, immediately replays the latched error or completion to the
//     new listener, and returns an already closed Subscription.
//
// Dispose is a hard stop distinct from termination. Registered listeners are dropped
// without any signal, and every later Next, Error, Complete, Dispose and Subscribe
// returns ErrDisposed.
//
// # Reentrancy
//
// Listener callbacks may subscribe, unsubscribe, push or terminate on the same subject.
// Each push iterates the registry as it stood when the push began:
//
//   - a listener added during a push does not receive that value;
//   - a listener removed during a push still receives that value if it was registered
//     when the push began, and receives nothing afterwards;
//   - if a callback terminates or disposes the subject, the value being delivered does
//     not reach the remaining listeners.
//
// # Listener Faults
//
// By default a panicking callback propagates out of the call that delivered the signal,
// so listeners later in the order miss that signal. The subject's bookkeeping is restored
// on the way out and it stays usable. WithPanicHandler isolates listeners instead:
//
//	s := subject.New[int](subject.WithPanicHandler(func(err *subject.PanicError) {
//		metrics.ListenerFaults.Inc()
//	}))
//
// # Read-only View
//
// AsObservable hides the sink face:
//
//	func (o *Orders) Events() subject.Observable[Event] {
//		return o.events.AsObservable()
//	}
//
// IsSubjectLike tells a subject apart from such a view.
//
// # Concurrency
//
// A Subject is not safe for concurrent use. All calls must come from one goroutine,
// or be serialized by the caller. pkg/broadcast layers a mutex and per-subscriber
// channels on top for concurrent producers and consumers.
package subject
