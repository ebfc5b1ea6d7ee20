package subject

import (
	"errors"
	"fmt"
)

var (
	// ErrDisposed is returned by every sink operation and by Subscribe once Dispose has been called.
	// The subject is unaffected by the failed call; retrying will fail the same way.
	ErrDisposed = errors.New("subject: disposed")

	// ErrNilError is returned by Error when called with a nil error. The subject stays active.
	ErrNilError = errors.New("subject: error signal carries nil error")
)

// PanicError wraps a value recovered from a listener callback.
// It is only produced when the subject was built with WithPanicHandler.
type PanicError struct {
	Kind  Kind
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("subject: %s listener panicked: %v", e.Kind, e.Value)
}

// Unwrap exposes the recovered value when the listener panicked with an error.
func (e *PanicError) Unwrap() error {
	err, _ := e.Value.(error)
	return err
}
