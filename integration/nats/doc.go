// Package nats bridges subject signals over NATS core pub/sub.
//
// Connect dials a server with reconnect settings from Config and logs
// disconnects and reconnects. Publish forwards every signal of an Observable to
// a NATS subject as a JSON envelope; Subscribe applies envelopes received on a
// subject to a Sink until a terminal one arrives:
//
//	nc, err := nats.Connect(cfg, nats.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer nc.Close()
//
//	receiver, err := nats.Subscribe[Order](ctx, nc, cfg.Subject, orders)
//	if err != nil {
//		return err
//	}
//	defer receiver.Close()
//
// Subscribe returns after the server has acknowledged the subscription.
// Messages that fail to decode are logged and skipped. A receiver whose sink
// rejects a signal (for example a disposed subject) stops and reports that
// error from Wait.
package nats
