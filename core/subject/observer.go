package subject

// Observer is the listener side of a subscription.
// Any callback may be nil, in which case that signal is dropped for this listener.
type Observer[T any] struct {
	Next     func(T)
	Error    func(error)
	Complete func()
}

// NextFunc builds an observer that only listens for values.
func NextFunc[T any](fn func(T)) Observer[T] {
	return Observer[T]{Next: fn}
}

// Sink accepts a stream of values followed by at most one terminal signal.
type Sink[T any] interface {
	Next(v T) error
	Error(err error) error
	Complete() error
}

// Observable is the source face: anything listeners can attach to.
type Observable[T any] interface {
	Subscribe(o Observer[T]) (*Subscription, error)
}

// SubjectLike is implemented only by *Subject. The unexported marker keeps wrappers
// that merely forward Next/Error/Complete from passing as a subject.
type SubjectLike[T any] interface {
	Observable[T]
	Sink[T]
	Dispose() error
	subjectLike()
}

// IsSubjectLike reports whether o also exposes the sink face of a subject.
// It is false for the view returned by AsObservable.
func IsSubjectLike[T any](o Observable[T]) bool {
	_, ok := o.(SubjectLike[T])
	return ok
}
