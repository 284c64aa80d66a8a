package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/routechain"
	"github.com/aretw0/routechain/internal/config"
	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/internal/presentation/graph"
	"github.com/aretw0/routechain/internal/presentation/tui"
	"github.com/aretw0/routechain/pkg/adapters/redis"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/observability"
	"github.com/aretw0/routechain/pkg/router"
	"github.com/aretw0/routechain/pkg/script"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is a router with its sequencer and the adapters configured around it.
type App struct {
	Config    *config.Config
	Router    *router.Router
	Sequencer *routechain.Sequencer
	// Registry is nil when metrics are disabled.
	Registry *prometheus.Registry
	Metrics  *observability.Metrics
	// Journal is nil when no Redis address is configured.
	Journal *redis.Journal
	Logger  *slog.Logger
}

type appOptions struct {
	logger  *slog.Logger
	trace   io.Writer
	hooks   []domain.LifecycleHooks
	journal *redis.Journal
}

// AppOption configures NewApp.
type AppOption func(*appOptions)

// WithLogger overrides the logger derived from the configured level.
func WithLogger(logger *slog.Logger) AppOption {
	return func(o *appOptions) { o.logger = logger }
}

// WithTrace prints a line per hook and item to w.
func WithTrace(w io.Writer) AppOption {
	return func(o *appOptions) { o.trace = w }
}

// WithHooks adds lifecycle hooks to the sequencer.
func WithHooks(hooks domain.LifecycleHooks) AppOption {
	return func(o *appOptions) { o.hooks = append(o.hooks, hooks) }
}

// WithJournal uses j instead of dialing the configured Redis address.
func WithJournal(j *redis.Journal) AppOption {
	return func(o *appOptions) { o.journal = j }
}

// NewApp assembles the application described by cfg.
func NewApp(ctx context.Context, cfg *config.Config, opts ...AppOption) (*App, error) {
	o := &appOptions{}
	for _, opt := range opts {
		opt(o)
	}

	logger := o.logger
	if logger == nil {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return nil, err
		}
		logger = logging.New(level)
	}

	r, err := script.NewCompiler(script.WithLogger(logger)).
		Build(cfg.Routes, cfg.Engines, router.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to build routes: %w", err)
	}

	app := &App{Config: cfg, Router: r, Logger: logger}
	seqOpts := []routechain.Option{
		routechain.WithLogger(logger),
		routechain.WithLifecycleHooks(observability.LoggingHooks(logger)),
	}

	if cfg.Metrics.Enabled {
		app.Registry = prometheus.NewRegistry()
		app.Registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		app.Metrics, err = observability.NewMetrics(cfg.Metrics.Namespace, app.Registry)
		if err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
		seqOpts = append(seqOpts, routechain.WithLifecycleHooks(app.Metrics.LifecycleHooks()))
	}

	app.Journal = o.journal
	if app.Journal == nil && cfg.Redis.Addr != "" {
		app.Journal = redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB,
			redis.WithStream(cfg.Redis.Stream),
			redis.WithMaxLen(cfg.Redis.MaxLen),
			redis.WithLogger(logger),
		)
		if err := app.Journal.Ping(ctx); err != nil {
			_ = app.Journal.Close()
			return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
		}
	}
	if app.Journal != nil {
		seqOpts = append(seqOpts,
			routechain.WithErrorSink(app.Journal),
			routechain.WithLifecycleHooks(app.Journal.LifecycleHooks()),
		)
	}

	if o.trace != nil {
		seqOpts = append(seqOpts, routechain.WithLifecycleHooks(tui.NewTracePrinter(o.trace).LifecycleHooks()))
	}
	for _, h := range o.hooks {
		seqOpts = append(seqOpts, routechain.WithLifecycleHooks(h))
	}

	app.Sequencer = routechain.Inject(r, seqOpts...)
	logger.Debug("app_ready", "routes", len(r.Map().Names()), "engines", len(r.Map().Engines()),
		"metrics", cfg.Metrics.Enabled, "journal", app.Journal != nil)
	return app, nil
}

// Visit navigates to url and waits for the resulting hook sequence.
func (a *App) Visit(ctx context.Context, url string) error {
	if err := a.Router.Visit(ctx, url); err != nil {
		return err
	}
	return a.Sequencer.Wait(ctx)
}

// Graph returns the Mermaid graph of the route tree with the active path overlaid.
func (a *App) Graph() string {
	return graph.GenerateMermaid(a.Router.Map(), graph.OverlayFor(a.Router, a.Sequencer.ActivePath()))
}

// Shutdown gives the in-flight hook sequence up to timeout to settle, then
// closes the adapters. Hooks still running after the deadline are abandoned.
func (a *App) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	var errs []error
	if err := a.Sequencer.Wait(ctx); err != nil {
		a.Logger.Warn("sequence_drain_incomplete", "timeout", timeout,
			"state", a.Sequencer.State().String(), "active", a.Sequencer.ActivePath().Names())
		errs = append(errs, fmt.Errorf("drain sequencer: %w", err))
	} else {
		a.Logger.Debug("sequence_drained", "active", a.Sequencer.ActivePath().Names())
	}
	errs = append(errs, a.Close())
	return errors.Join(errs...)
}

// Close releases the adapters.
func (a *App) Close() error {
	var errs []error
	if a.Journal != nil {
		errs = append(errs, a.Journal.Close())
	}
	return errors.Join(errs...)
}
