package script

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/routechain/internal/logging"
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/dsl"
	"github.com/aretw0/routechain/pkg/registry"
	"github.com/aretw0/routechain/pkg/router"
)

// Compiler turns route scripts into hooks on a dsl.Builder.
type Compiler struct {
	logger  *slog.Logger
	actions *registry.Registry
}

// CompilerOption configures a Compiler.
type CompilerOption func(*Compiler)

// WithLogger sets the logger the log action writes to.
func WithLogger(logger *slog.Logger) CompilerOption {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithActions makes the actions of reg available to "do". Built-in actions
// take precedence over registered ones.
func WithActions(reg *registry.Registry) CompilerOption {
	return func(c *Compiler) { c.actions = reg }
}

// NewCompiler creates a compiler.
func NewCompiler(opts ...CompilerOption) *Compiler {
	c := &Compiler{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Qualified returns the fully qualified routes of the host application and
// every engine.
func Qualified(routes []RouteSpec, engines []EngineSpec) []RouteSpec {
	out := append([]RouteSpec(nil), routes...)
	for _, e := range engines {
		out = append(out, RouteSpec{Name: e.Mount})
		for _, r := range e.Routes {
			q := r
			if r.Name == router.ApplicationRoute {
				q.Name = e.Mount
			} else {
				q.Name = e.Mount + "." + r.Name
			}
			out = append(out, q)
		}
	}
	return out
}

// Compile declares every route on b and installs its hooks and guard.
// All problems are reported together.
func (c *Compiler) Compile(b *dsl.Builder, routes []RouteSpec, engines []EngineSpec) error {
	all := Qualified(routes, engines)
	known := declaredNames(all)

	var errs []error
	for _, e := range engines {
		b.Mount(e.Mount)
	}
	for _, spec := range all {
		if spec.Name == "" {
			errs = append(errs, errors.New("route with empty name"))
			continue
		}
		rb := b.Application()
		if spec.Name != router.ApplicationRoute {
			rb = b.Route(spec.Name)
		}
		if len(spec.Enter) > 0 {
			items, err := c.compileChain(spec.Name, domain.HookEnter, spec.Enter, known)
			errs = append(errs, err)
			rb.OnEnter(items...)
		}
		if len(spec.Exit) > 0 {
			items, err := c.compileChain(spec.Name, domain.HookExit, spec.Exit, known)
			errs = append(errs, err)
			rb.OnExit(items...)
		}
		if spec.Guard != nil {
			guard, err := compileGuard(spec.Name, *spec.Guard, known)
			errs = append(errs, err)
			rb.Guard(guard)
		}
	}
	return errors.Join(errs...)
}

// Build compiles the scripts into a ready router.
func (c *Compiler) Build(routes []RouteSpec, engines []EngineSpec, opts ...router.Option) (*router.Router, error) {
	b := dsl.New()
	if err := c.Compile(b, routes, engines); err != nil {
		return nil, err
	}
	return b.Build(opts...)
}

// Validate reports every problem Compile would report, without a builder.
func Validate(routes []RouteSpec, engines []EngineSpec) error {
	var errs []error
	seen := make(map[string]bool)
	for _, spec := range Qualified(routes, nil) {
		if spec.Name == "" {
			errs = append(errs, errors.New("route with empty name"))
			continue
		}
		if seen[spec.Name] {
			errs = append(errs, fmt.Errorf("route %q declared twice", spec.Name))
		}
		seen[spec.Name] = true
	}
	for _, e := range engines {
		if e.Mount == "" || strings.Contains(e.Mount, ".") {
			errs = append(errs, fmt.Errorf("engine mount %q must be a single segment", e.Mount))
		}
		if seen[e.Mount] {
			errs = append(errs, fmt.Errorf("engine mount %q collides with a route", e.Mount))
		}
		seen[e.Mount] = true
	}
	errs = append(errs, NewCompiler().Compile(dsl.New(), routes, engines))
	return errors.Join(errs...)
}

func (c *Compiler) compileChain(route string, hook domain.HookName, specs []ItemSpec, known map[string]bool) ([]domain.Item, error) {
	var errs []error
	items := make([]domain.Item, 0, len(specs))
	for i, spec := range specs {
		cond, err := ParseCondition(spec.When)
		if err != nil {
			errs = append(errs, fmt.Errorf("route %q %s item %d: %w", route, hook, i, err))
			continue
		}
		action, target, err := c.compileAction(spec)
		if err != nil {
			errs = append(errs, fmt.Errorf("route %q %s item %d: %w", route, hook, i, err))
			continue
		}
		if target != "" && !known[target] {
			errs = append(errs, fmt.Errorf("route %q %s item %d: redirect to %w: %q", route, hook, i, router.ErrUnknownRoute, target))
			continue
		}
		name := spec.Name
		if name == "" {
			name = spec.Do
		}
		items = append(items, domain.Item{Name: name, Condition: cond, Action: action})
	}
	return items, errors.Join(errs...)
}

func compileGuard(route string, spec GuardSpec, known map[string]bool) (router.GuardFunc, error) {
	cond, err := ParseCondition(spec.When)
	if err != nil {
		return nil, fmt.Errorf("route %q guard: %w", route, err)
	}
	if spec.Redirect != "" && !known[spec.Redirect] {
		return nil, fmt.Errorf("route %q guard: redirect to %w: %q", route, router.ErrUnknownRoute, spec.Redirect)
	}
	reason := spec.Reject
	if reason == "" {
		reason = "transition rejected"
	}
	return func(ctx context.Context, t *router.Transition) error {
		ok, err := holds(ctx, cond, nil)
		if err != nil || !ok {
			return err
		}
		if spec.Redirect != "" {
			t.Redirect(spec.Redirect)
			return nil
		}
		return fmt.Errorf("%w: %s", ErrRejected, reason)
	}, nil
}

// declaredNames returns every route name the scripts declare, including
// implicit parents and the application route.
func declaredNames(routes []RouteSpec) map[string]bool {
	known := map[string]bool{router.ApplicationRoute: true}
	for _, r := range routes {
		name := r.Name
		for name != "" {
			known[name] = true
			i := strings.LastIndex(name, ".")
			if i < 0 {
				break
			}
			name = name[:i]
		}
	}
	return known
}
