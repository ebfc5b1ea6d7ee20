// Package websocket streams a broadcaster to browser clients over WebSocket.
//
// Each connection gets its own broadcast subscriber. Values are written as JSON
// envelope text frames (see pkg/envelope); when the broadcaster closes the
// client receives a final complete or error envelope followed by a close frame
// with code 1000 or 1011.
//
//	prices := broadcast.NewMemoryBroadcaster[Quote](64)
//	http.Handle("/ws/prices", websocket.Handler[Quote](prices,
//		websocket.WithOriginCheck(sameOrigin),
//		websocket.WithLogger(log),
//	))
//
// Slow clients lose messages instead of stalling the producer: the subscriber
// buffer is bounded and a full buffer drops. Stream can be used directly when
// the caller owns the upgrade.
package websocket
