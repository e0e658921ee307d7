package eventbus

import "log/slog"

// Option configures a Bus.
type Option func(*Bus)

// WithLogger configures structured logging for registration and dispatch.
// The default logger discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// WithHandlerPrefix sets the method-name prefix that marks event handlers. Default "On".
//
// Example:
//
//	bus := eventbus.New(eventbus.WithHandlerPrefix("Handle"))
//	// func (s *Search) HandleProductUpdated(evt *ProductUpdated) { ... }
func WithHandlerPrefix(prefix string) Option {
	return func(b *Bus) {
		if prefix != "" {
			b.prefixes.handler = prefix
		}
	}
}

// WithFailurePrefix sets the method-name prefix that marks failure handlers. Default "Recover".
func WithFailurePrefix(prefix string) Option {
	return func(b *Bus) {
		if prefix != "" {
			b.prefixes.failure = prefix
		}
	}
}

// WithDefaultCancelMode sets the mode used by Post. Default Respect.
func WithDefaultCancelMode(mode CancelMode) Option {
	return func(b *Bus) {
		if mode <= Enforce {
			b.mode = mode
		}
	}
}

// WithFailureSink records every unhandled failure, recoverable or fatal.
// The sink runs on the posting goroutine; its errors are logged and dropped.
func WithFailureSink(sink FailureSink) Option {
	return func(b *Bus) {
		if sink != nil {
			b.sink = sink
		}
	}
}
