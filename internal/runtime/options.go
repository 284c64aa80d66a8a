package runtime

import (
	"log/slog"

	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/ports"
)

// Option configures a Controller and the invoker/runner it owns.
type Option func(*settings)

type settings struct {
	logger *slog.Logger
	sink   ports.ErrorSink
	hooks  domain.LifecycleHooks
}

func defaultSettings() settings {
	return settings{logger: logging.NewNop()}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithErrorSink sets where hook and chain failures are reported.
// Without a sink failures are only logged.
func WithErrorSink(sink ports.ErrorSink) Option {
	return func(s *settings) {
		s.sink = sink
	}
}

// WithLifecycleHooks registers observability callbacks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *settings) {
		s.hooks = hooks
	}
}
