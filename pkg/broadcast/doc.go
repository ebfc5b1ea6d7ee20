// Package broadcast provides a generic, concurrency-safe pub/sub layer on top of
// core/subject.
//
// A subject delivers synchronously on the caller's goroutine and is not safe for
// concurrent use. MemoryBroadcaster wraps one behind a mutex and gives every
// subscriber its own buffered channel, so producers and consumers can run on any
// goroutine and a slow consumer never blocks the producer.
//
// # Usage
//
//	// Create a broadcaster with buffer size of 100 messages per subscriber
//	broadcaster := broadcast.NewMemoryBroadcaster[string](100)
//	defer broadcaster.Close()
//
//	ctx, cancel := context.WithCancel(context.Background())
//	defer cancel()
//
//	subscriber := broadcaster.Subscribe(ctx)
//	defer subscriber.Close()
//
//	go func() {
//		for msg := range subscriber.Receive(ctx) {
//			fmt.Printf("Received: %s\n", msg.Data)
//		}
//		if err := subscriber.Err(); err != nil {
//			fmt.Println("stream failed:", err)
//		}
//	}()
//
//	broadcaster.Broadcast(ctx, broadcast.Message[string]{Data: "Hello, World!"})
//
// # Semantics
//
// The subject's guarantees carry over:
//
//   - No replay: a subscriber only receives messages broadcast after Subscribe returned.
//   - Close completes the underlying subject. Every subscriber channel is closed and
//     Broadcast returns ErrBroadcasterClosed from then on. Subscribing afterwards
//     yields a subscriber whose channel is already closed.
//   - CloseWithError does the same and makes Subscriber.Err return the error.
//
// # Slow Consumers
//
// If a subscriber's buffer is full the message is dropped for that subscriber only.
// Choose buffer sizes from expected message rates: 10-100 for low volume,
// 100-1000 for high volume.
//
// # Context Integration
//
// Cancelling the context passed to Subscribe closes that subscriber. Each open
// subscriber owns one goroutine that waits for this; it exits when the subscriber
// is closed by any path.
//
// # Metrics
//
// WithMetrics registers three collectors:
//
//	<namespace>_broadcast_delivered_total
//	<namespace>_broadcast_dropped_total
//	<namespace>_broadcast_subscribers
//
// Broadcasters sharing a registry and namespace share the collectors.
package broadcast
