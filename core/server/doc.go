// Package server runs the HTTP endpoints of a multicast process (WebSocket feed,
// metrics, health) with graceful shutdown.
//
//	srv, err := server.NewFromConfig(cfg.Server, server.WithLogger(log))
//	if err != nil {
//		return err
//	}
//
//	eg, ctx := errgroup.WithContext(ctx)
//	eg.Go(srv.Run(ctx, mux))
//	return eg.Wait()
//
// Start binds the listener before returning control to the serve loop, so Addr
// reports the real port when the configured address ends in ":0". Stop drains
// in-flight requests for up to the shutdown timeout. Hijacked connections such
// as WebSocket streams are not tracked by http.Server; their handlers must stop
// on their own, typically by closing the broadcaster they stream from.
package server
