// Package redis connects to Redis and bridges subject signals over Redis pub/sub.
//
// Connect validates the connection URL, creates a client and blocks until PING
// succeeds, retrying with exponential backoff. Healthcheck returns a probe
// suitable for readiness endpoints.
//
// # Configuration
//
//	type Config struct {
//		ConnectionURL  string        `env:"REDIS_URL,required" envDefault:"redis://localhost:6379/0"`
//		RetryAttempts  int           `env:"REDIS_RETRY_ATTEMPTS" envDefault:"3"`
//		RetryInterval  time.Duration `env:"REDIS_RETRY_INTERVAL" envDefault:"5s"`
//		ConnectTimeout time.Duration `env:"REDIS_CONNECT_TIMEOUT" envDefault:"30s"`
//		Channel        string        `env:"REDIS_CHANNEL" envDefault:"multicast"`
//	}
//
// Both redis:// and rediss:// (TLS) schemes are accepted.
//
// # Bridging
//
// Publish subscribes to an Observable and forwards every signal to a channel as a
// JSON envelope (see pkg/envelope). Subscribe listens on a channel and applies each
// envelope to a Sink until a terminal envelope arrives:
//
//	client, err := redis.Connect(ctx, cfg)
//	if err != nil {
//		return err
//	}
//	defer client.Close()
//
//	// consumer side
//	prices := subject.New[float64]()
//	receiver, err := redis.Subscribe[float64](ctx, client, cfg.Channel, prices)
//	if err != nil {
//		return err
//	}
//	defer receiver.Close()
//
//	// producer side
//	ticks := subject.New[float64]()
//	sub, err := redis.Publish(ctx, client, cfg.Channel, ticks.AsObservable())
//	if err != nil {
//		return err
//	}
//	defer sub.Unsubscribe()
//
//	ticks.Next(101.5)
//	ticks.Complete()
//
// Redis pub/sub is fire-and-forget: signals published while no receiver is
// subscribed are lost, which matches a subject's no-replay semantics. Errors
// cross the wire as their message only and arrive as *envelope.RemoteError.
//
// # Error Handling
//
//   - ErrFailedToParseRedisConnString: malformed URL or unsupported scheme
//   - ErrRedisNotReady: PING never succeeded within the retry budget
//   - ErrEmptyConnectionURL: no URL configured
//   - ErrHealthcheckFailed: health probe failed
//   - ErrSubscriptionClosed: the client closed the pub/sub channel under a receiver
package redis
