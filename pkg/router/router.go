package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/ports"
)

var (
	// ErrUnknownRoute is returned for route names and URLs the map does not declare.
	ErrUnknownRoute = errors.New("unknown route")
	// ErrTransitionAborted is returned when a guard rejects a transition.
	ErrTransitionAborted = errors.New("transition aborted")
	// ErrRedirectLoop is returned when guards keep redirecting.
	ErrRedirectLoop = errors.New("too many redirects")
)

// DefaultMaxRedirects bounds guard redirects within one navigation.
const DefaultMaxRedirects = 10

// Option configures a Router.
type Option func(*Router)

// WithRegistry sets the registry of the host application.
func WithRegistry(reg *Registry) Option {
	return func(r *Router) {
		if reg != nil {
			r.registries[""] = reg
		}
	}
}

// WithEngine sets the registry of the engine mounted as mount.
func WithEngine(mount string, reg *Registry) Option {
	return func(r *Router) {
		if reg != nil {
			r.registries[mount] = reg
		}
	}
}

// WithLogger sets the router logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMaxRedirects overrides DefaultMaxRedirects.
func WithMaxRedirects(n int) Option {
	return func(r *Router) {
		if n >= 0 {
			r.maxRedirects = n
		}
	}
}

// Router navigates a Map and notifies listeners around every transition.
type Router struct {
	routes       *Map
	registries   map[string]*Registry
	logger       *slog.Logger
	maxRedirects int

	// nav serialises transitions so listeners see Will/Did pairs in order.
	nav sync.Mutex

	mu        sync.RWMutex
	current   *RouteDef
	query     url.Values
	listeners []ports.TransitionListener
}

// New creates a router for m. Engines without an explicit registry get a fresh one.
func New(m *Map, opts ...Option) *Router {
	r := &Router{
		routes:       m,
		registries:   make(map[string]*Registry),
		logger:       logging.NewNop(),
		maxRedirects: DefaultMaxRedirects,
	}
	for _, opt := range opts {
		opt(r)
	}
	if _, ok := r.registries[""]; !ok {
		r.registries[""] = NewRegistry()
	}
	m.Walk(func(def *RouteDef, _ int) {
		if def.IsMount() {
			if _, ok := r.registries[def.Engine]; !ok {
				r.registries[def.Engine] = NewEngineRegistry(def.Name)
			}
		}
	})
	return r
}

// On registers a transition listener.
func (r *Router) On(l ports.TransitionListener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, l)
}

// Map returns the route tree.
func (r *Router) Map() *Map { return r.routes }

// Registry returns the registry of an engine, or of the host application for "".
func (r *Router) Registry(engine string) *Registry {
	return r.registries[engine]
}

// Handler returns the handler bound to a fully qualified route name.
// It panics on names the map does not declare; use Lookup to check.
func (r *Router) Handler(name string) *Handler {
	h, err := r.Lookup(name)
	if err != nil {
		panic(err)
	}
	return h
}

// Lookup returns the handler bound to a fully qualified route name.
func (r *Router) Lookup(name string) (*Handler, error) {
	def, ok := r.routes.Route(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return r.handlerOf(def), nil
}

func (r *Router) handlerOf(def *RouteDef) *Handler {
	return r.registries[def.Engine].Lookup(def.Local)
}

// PathOf returns the handlers from the application route down to name.
func (r *Router) PathOf(name string) (domain.Path, error) {
	def, ok := r.routes.Route(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return r.pathOf(def), nil
}

func (r *Router) pathOf(def *RouteDef) domain.Path {
	lineage := def.Lineage()
	path := make(domain.Path, 0, len(lineage))
	for _, d := range lineage {
		path = append(path, r.handlerOf(d))
	}
	return path
}

// Current returns the name of the active route, or "" before the first visit.
func (r *Router) Current() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return ""
	}
	return r.current.Name
}

// CurrentURL returns the URL of the active route including its query string.
func (r *Router) CurrentURL() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.current == nil {
		return ""
	}
	return withQuery(r.current.URL(), r.query)
}

// CurrentPath returns the handlers of the active route.
func (r *Router) CurrentPath() domain.Path {
	r.mu.RLock()
	cur := r.current
	r.mu.RUnlock()
	if cur == nil {
		return nil
	}
	return r.pathOf(cur)
}

// TransitionTo navigates to a route by name.
func (r *Router) TransitionTo(ctx context.Context, name string) error {
	def, ok := r.routes.Route(name)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoute, name)
	}
	return r.navigate(ctx, def, nil)
}

// Visit navigates to a URL such as "/posts/show?draft=1".
func (r *Router) Visit(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	def, ok := r.routes.Match(u.Path)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownRoute, u.Path)
	}
	return r.navigate(ctx, def, u.Query())
}

func (r *Router) navigate(ctx context.Context, def *RouteDef, query url.Values) error {
	r.nav.Lock()
	defer r.nav.Unlock()

	from := r.Current()
	fromPath := r.CurrentPath()

	for redirects := 0; ; redirects++ {
		if redirects > r.maxRedirects {
			return fmt.Errorf("%w: stopped at %q after %d", ErrRedirectLoop, def.Name, r.maxRedirects)
		}
		t := &Transition{
			From:      from,
			To:        def.Name,
			URL:       withQuery(def.URL(), query),
			Query:     query,
			Redirects: redirects,
			router:    r,
		}
		tctx := WithTransition(ctx, t)
		listeners := r.snapshotListeners()

		r.logger.Debug("transition started", "from", from, "to", t.To, "redirects", redirects)
		for _, l := range listeners {
			l.WillTransition(tctx)
		}

		next := r.pathOf(def)
		if err := r.runGuards(tctx, t, fromPath, next); err != nil {
			r.logger.Warn("transition aborted", "from", from, "to", t.To, "error", err)
			return fmt.Errorf("%w: %s: %w", ErrTransitionAborted, t.To, err)
		}
		if t.redirectTo != "" {
			target, ok := r.routes.Route(t.redirectTo)
			if !ok {
				return fmt.Errorf("redirect from %q: %w: %q", t.To, ErrUnknownRoute, t.redirectTo)
			}
			r.logger.Debug("transition redirected", "from", t.To, "to", target.Name)
			def, query = target, nil
			continue
		}

		r.mu.Lock()
		r.current = def
		r.query = query
		r.mu.Unlock()

		for _, l := range listeners {
			l.DidTransition(tctx, next)
		}
		return nil
	}
}

// runGuards runs BeforeModel on every route being entered, outermost first,
// stopping at the first error or redirect.
func (r *Router) runGuards(ctx context.Context, t *Transition, prev, next domain.Path) error {
	for _, n := range next {
		if prev.Contains(n) {
			continue
		}
		h, ok := n.(*Handler)
		if !ok {
			continue
		}
		guard := h.BeforeModel()
		if guard == nil {
			continue
		}
		if err := guard(ctx, t); err != nil {
			return fmt.Errorf("route %q: %w", h.NodeName(), err)
		}
		if t.redirectTo != "" {
			return nil
		}
	}
	return nil
}

func (r *Router) snapshotListeners() []ports.TransitionListener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]ports.TransitionListener(nil), r.listeners...)
}

func withQuery(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	return path + "?" + query.Encode()
}
