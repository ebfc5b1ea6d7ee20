package health

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/multicast/core/logger"
)

// Check probes one dependency, such as a Redis or NATS connection.
type Check func(context.Context) error

// Liveness reports that the process is up.
func Liveness(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ALIVE"))
}

// Readiness runs the checks and answers 503 on the first failure.
func Readiness(log *slog.Logger, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		for name, check := range checks {
			if err := check(r.Context()); err != nil {
				log.ErrorContext(r.Context(), "readiness check failed",
					logger.Component(name),
					logger.Error(err),
				)
				http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
				return
			}
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("READY"))
	}
}
