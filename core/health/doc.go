// Package health provides HTTP probes for a multicast process.
//
//	mux.HandleFunc("GET /health/live", health.Liveness)
//	mux.Handle("GET /health/ready", health.Readiness(log, map[string]health.Check{
//		"redis": redis.Healthcheck(client),
//		"nats":  nats.Healthcheck(nc),
//	}))
//
// Checks follow the func(context.Context) error shape returned by the
// integration packages. Failures are logged with the check name.
package health
