package docsave

import (
	"github.com/bft-labs/docsave/internal/adapters/log"
	"github.com/bft-labs/docsave/internal/app"
	"github.com/bft-labs/docsave/internal/ports"
)

// Logger is the interface for structured logging. See the adapters in this
// module for zerolog-backed and no-op implementations.
type Logger = ports.Logger

// LogField represents a structured log field.
type LogField = ports.Field

// HTTPClient is the interface for making HTTP requests.
// *http.Client satisfies this interface.
type HTTPClient = ports.HTTPClient

// GuardConfig configures the connectivity guard enabled by
// [WithConnectivityGuard].
type GuardConfig = app.GuardConfig

// DefaultGuardConfig returns a GuardConfig with sensible defaults.
func DefaultGuardConfig() GuardConfig {
	return app.DefaultGuardConfig()
}

// Option configures optional behavior of a Saver.
type Option func(*options)

// options holds the optional configuration for a Saver instance.
type options struct {
	logger      ports.Logger
	guardConfig *GuardConfig
}

func defaultOptions() options {
	return options{
		logger: log.NewNoopLogger(),
	}
}

// WithLogger sets a custom logger for structured logging.
// If not provided, a no-op logger is used (no output).
func WithLogger(logger Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithZerologLogger enables the built-in zerolog console logger.
func WithZerologLogger() Option {
	return func(o *options) {
		o.logger = log.NewZerologAdapter()
	}
}

// WithConnectivityGuard wraps the backend in a connectivity guard that
// retries transport-level failures with exponential backoff before they
// surface as save failures. Conflicts and rejections are never retried.
func WithConnectivityGuard(cfg GuardConfig) Option {
	return func(o *options) {
		c := cfg
		o.guardConfig = &c
	}
}
