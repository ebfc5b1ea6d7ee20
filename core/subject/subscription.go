package subject

// Subscription is the handle returned by Subscribe.
// Unsubscribe is idempotent and safe to call from inside any callback.
type Subscription struct {
	closed   bool
	teardown func()
}

func closedSubscription() *Subscription {
	return &Subscription{closed: true}
}

// Unsubscribe detaches the listener. Calls after the first, or after the subject
// terminated or was disposed, do nothing. A nil subscription is a no-op.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.closed {
		return
	}
	s.closed = true
	if s.teardown != nil {
		teardown := s.teardown
		s.teardown = nil
		teardown()
	}
}

// Closed reports whether the listener is no longer registered.
func (s *Subscription) Closed() bool {
	return s == nil || s.closed
}

// release marks the handle closed without running the teardown; used when the
// subject drops its whole registry.
func (s *Subscription) release() {
	s.closed = true
	s.teardown = nil
}
