package routechain

import (
	"context"
	"log/slog"

	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/internal/runtime"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/observability"
	"github.com/aretw0/routechain/pkg/ports"
	"github.com/aretw0/routechain/pkg/router"
)

// Run is the handle of one hook sequence.
type Run = runtime.Run

// RunResult summarises a finished sequence.
type RunResult = runtime.RunResult

// Sequencer is the high-level entry point of the library.
// It listens to router transitions and runs the onExit/onEnter hook chains
// of the routes that changed.
type Sequencer struct {
	ctrl   *runtime.Controller
	logger *slog.Logger
}

var _ ports.TransitionListener = (*Sequencer)(nil)

type options struct {
	logger *slog.Logger
	sinks  []ports.ErrorSink
	hooks  []domain.LifecycleHooks
}

// Option defines a functional option for configuring the Sequencer.
type Option func(*options)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithErrorSink adds a destination for hook and chain failures.
// Several sinks may be registered; each receives every failure.
func WithErrorSink(sink ports.ErrorSink) Option {
	return func(o *options) {
		o.sinks = append(o.sinks, sink)
	}
}

// WithErrorHandler is WithErrorSink for a plain function, the equivalent of an
// application-wide onerror handler.
func WithErrorHandler(fn func(ctx context.Context, err error)) Option {
	return func(o *options) {
		if fn != nil {
			o.sinks = append(o.sinks, ports.ErrorSinkFunc(fn))
		}
	}
}

// WithLifecycleHooks registers observability hooks. Repeated calls stack.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *options) {
		o.hooks = append(o.hooks, hooks)
	}
}

// New creates an idle Sequencer.
func New(opts ...Option) *Sequencer {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.With("component", "routechain")

	ctrl := runtime.NewController(
		runtime.WithLogger(logger),
		runtime.WithErrorSink(ports.MultiSink(o.sinks...)),
		runtime.WithLifecycleHooks(observability.Combine(o.hooks...)),
	)
	return &Sequencer{ctrl: ctrl, logger: logger}
}

// Inject creates a Sequencer and subscribes it to r's transitions.
func Inject(r *router.Router, opts ...Option) *Sequencer {
	s := New(opts...)
	r.On(s)
	return s
}

// WillTransition invalidates the running sequence.
func (s *Sequencer) WillTransition(ctx context.Context) {
	s.ctrl.WillTransition(ctx)
}

// DidTransition schedules the hooks of a committed transition to next.
func (s *Sequencer) DidTransition(ctx context.Context, next domain.Path) {
	s.ctrl.DidTransition(ctx, next)
}

// Transition is the single-event integration: it supersedes the running
// sequence and schedules the hooks of the transition from prev to next.
// prev only matters for the first transition the Sequencer sees.
func (s *Sequencer) Transition(ctx context.Context, prev, next domain.Path) *Run {
	return s.ctrl.Transition(ctx, prev, next)
}

// State returns the current execution state.
func (s *Sequencer) State() domain.ExecutionState {
	return s.ctrl.State()
}

// ActivePath returns the path the hooks consider active.
func (s *Sequencer) ActivePath() domain.Path {
	return s.ctrl.ActivePath()
}

// Wait blocks until the most recent sequence, and any it started, has finished.
func (s *Sequencer) Wait(ctx context.Context) error {
	return s.ctrl.Wait(ctx)
}

// ComputeHookBatches returns the hooks a transition from prev to next runs:
// onExit innermost first, then onEnter outermost first.
func ComputeHookBatches(prev, next domain.Path) (exit, enter domain.Batch) {
	return runtime.ComputeHookBatches(prev, next)
}
