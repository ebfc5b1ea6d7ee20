package broadcast

import (
	"context"
	"errors"
)

var (
	// ErrBroadcasterClosed is returned by Broadcast after Close or CloseWithError.
	ErrBroadcasterClosed = errors.New("broadcast: broadcaster closed")

	// ErrSubscriberClosed is returned by Subscriber.Close when called more than once.
	ErrSubscriberClosed = errors.New("broadcast: subscriber closed")
)

// Message wraps a broadcast payload.
type Message[T any] struct {
	Data T
}

// Broadcaster sends messages to every current subscriber.
type Broadcaster[T any] interface {
	Broadcast(ctx context.Context, msg Message[T]) error
	Subscribe(ctx context.Context) Subscriber[T]
	Close() error
}

// Subscriber receives broadcast messages on a channel.
type Subscriber[T any] interface {
	// ID uniquely identifies the subscriber in logs.
	ID() string

	// Receive returns the delivery channel. It is closed when the subscriber or
	// the broadcaster is closed, or when the subscribe context is cancelled.
	Receive(ctx context.Context) <-chan Message[T]

	// Err returns the error the broadcaster was closed with, once the channel is closed.
	Err() error

	Close() error
}
