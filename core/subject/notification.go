package subject

import "fmt"

// Kind identifies one of the three signals a subject emits.
type Kind uint8

const (
	KindNext Kind = iota + 1
	KindError
	KindComplete
)

func (k Kind) String() string {
	switch k {
	case KindNext:
		return "next"
	case KindError:
		return "error"
	case KindComplete:
		return "complete"
	default:
		return "unknown"
	}
}

// Notification is a materialized signal. Recorders and wire bridges pass these around
// instead of calling observer callbacks directly.
type Notification[T any] struct {
	Kind  Kind
	Value T
	Err   error
}

// OnNext materializes a value signal.
func OnNext[T any](v T) Notification[T] {
	return Notification[T]{Kind: KindNext, Value: v}
}

// OnError materializes an error signal.
func OnError[T any](err error) Notification[T] {
	return Notification[T]{Kind: KindError, Err: err}
}

// OnComplete materializes a completion signal.
func OnComplete[T any]() Notification[T] {
	return Notification[T]{Kind: KindComplete}
}

// Terminal reports whether n is an error or a completion.
func (n Notification[T]) Terminal() bool {
	return n.Kind == KindError || n.Kind == KindComplete
}

// Accept invokes the matching callback of o. Missing callbacks drop the signal.
func (n Notification[T]) Accept(o Observer[T]) {
	switch n.Kind {
	case KindNext:
		if o.Next != nil {
			o.Next(n.Value)
		}
	case KindError:
		if o.Error != nil {
			o.Error(n.Err)
		}
	case KindComplete:
		if o.Complete != nil {
			o.Complete()
		}
	}
}

// Apply pushes n into a sink and returns the sink's error.
func (n Notification[T]) Apply(s Sink[T]) error {
	switch n.Kind {
	case KindNext:
		return s.Next(n.Value)
	case KindError:
		return s.Error(n.Err)
	case KindComplete:
		return s.Complete()
	default:
		return fmt.Errorf("subject: cannot apply notification of kind %d", n.Kind)
	}
}

func (n Notification[T]) String() string {
	switch n.Kind {
	case KindNext:
		return fmt.Sprintf("next(%v)", n.Value)
	case KindError:
		return fmt.Sprintf("error(%v)", n.Err)
	default:
		return n.Kind.String()
	}
}
