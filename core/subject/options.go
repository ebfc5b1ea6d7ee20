package subject

import "log/slog"

type options struct {
	name    string
	logger  *slog.Logger
	onPanic func(*PanicError)
}

// Option configures a Subject.
type Option func(*options)

// WithName sets the name attached to the subject's log records.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithLogger sets the logger for lifecycle records.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithPanicHandler isolates listener faults. A panicking callback is recovered,
// logged, and reported to fn, and delivery continues with the next listener.
//
// Without this option a panic propagates out of the Next, Error, Complete or
// Subscribe call that triggered it, and listeners later in the order do not
// receive that signal.
func WithPanicHandler(fn func(*PanicError)) Option {
	return func(o *options) {
		o.onPanic = fn
	}
}
