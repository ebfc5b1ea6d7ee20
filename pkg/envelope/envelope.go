// Package envelope encodes subject notifications as JSON so they can cross a
// process boundary (Redis, NATS, WebSocket) and be replayed into a sink on the
// other side.
//
// Wire format:
//
//	{"kind":"next","value":<json>}
//	{"kind":"error","error":"message"}
//	{"kind":"complete"}
package envelope

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrymomot/multicast/core/subject"
)

var (
	// ErrUnknownKind is returned when decoding an envelope with an unrecognized kind.
	ErrUnknownKind = errors.New("envelope: unknown kind")

	// ErrMalformed wraps JSON decoding failures.
	ErrMalformed = errors.New("envelope: malformed payload")
)

// Envelope is the wire representation of a notification.
type Envelope struct {
	Kind  string          `json:"kind"`
	Value json.RawMessage `json:"value,omitempty"`
	Error string          `json:"error,omitempty"`
}

// RemoteError carries the message of an error that was raised on the far side
// of a bridge. Its identity does not survive the trip.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Encode serializes n.
func Encode[T any](n subject.Notification[T]) ([]byte, error) {
	env := Envelope{Kind: n.Kind.String()}

	switch n.Kind {
	case subject.KindNext:
		raw, err := json.Marshal(n.Value)
		if err != nil {
			return nil, fmt.Errorf("envelope: encode value: %w", err)
		}
		env.Value = raw
	case subject.KindError:
		if n.Err != nil {
			env.Error = n.Err.Error()
		}
	case subject.KindComplete:
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, n.Kind)
	}

	return json.Marshal(env)
}

// Decode parses data produced by Encode. Errors come back as *RemoteError.
func Decode[T any](data []byte) (subject.Notification[T], error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return subject.Notification[T]{}, fmt.Errorf("%w: %w", ErrMalformed, err)
	}

	switch env.Kind {
	case "next":
		var v T
		if len(env.Value) > 0 {
			if err := json.Unmarshal(env.Value, &v); err != nil {
				return subject.Notification[T]{}, fmt.Errorf("%w: %w", ErrMalformed, err)
			}
		}
		return subject.OnNext(v), nil
	case "error":
		return subject.OnError[T](&RemoteError{Message: env.Error}), nil
	case "complete":
		return subject.OnComplete[T](), nil
	default:
		return subject.Notification[T]{}, fmt.Errorf("%w: %q", ErrUnknownKind, env.Kind)
	}
}
