// Package logger provides structured logging utilities built on Go's standard slog package:
// a small factory for configured *slog.Logger values and attribute helpers with
// consistent keys for the multicast packages.
//
// # Basic Usage
//
//	import "github.com/dmitrymomot/multicast/core/logger"
//
//	// Development: text format, debug level, stdout
//	log := logger.New(logger.WithDevelopment("orders"))
//
//	// Production: JSON format, info level, stdout
//	log := logger.New(logger.WithProduction("orders"))
//
//	// Custom configuration
//	log := logger.New(
//		logger.WithLevel(slog.LevelWarn),
//		logger.WithJSONFormatter(),
//		logger.WithAttr(slog.String("region", "eu-west-1")),
//		logger.WithOutput(os.Stderr),
//	)
//
// Discard returns a logger that drops everything, which keeps test output quiet.
//
// # Attribute Helpers
//
// Helpers return an empty slog.Attr for nil or empty input, and slog omits empty
// attributes, so callers never need nil checks:
//
//	log.Debug("subject errored",
//		logger.Subject(name),     // omitted for anonymous subjects
//		logger.Error(err),        // omitted when err is nil
//		logger.Subscribers(n),
//	)
//
//	log.Warn("bridge publish failed",
//		logger.Channel("orders"),
//		logger.Signal("next"),
//		logger.Error(err),
//	)
//
// Multicast helpers: Subject, Signal, SubscriptionID, Subscribers, Channel, Panic.
// Generic helpers: Error, Errors, Group, Duration, Component, Event, Count, ID, Key, RetryCount.
package logger
