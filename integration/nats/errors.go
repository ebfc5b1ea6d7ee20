package nats

import "errors"

var (
	ErrEmptyURL          = errors.New("empty nats url")
	ErrConnectFailed     = errors.New("failed to connect to nats")
	ErrNotConnected      = errors.New("nats connection is not established")
	ErrHealthcheckFailed = errors.New("nats healthcheck failed")
	ErrSubscribeFailed   = errors.New("failed to subscribe to nats subject")
)
