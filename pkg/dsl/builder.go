package dsl

import (
	"fmt"
	"strings"

	"github.com/aretw0/routechain/pkg/router"
)

// Builder manages the route tree construction.
type Builder struct {
	routes map[string]*RouteBuilder
	mounts map[string]bool
	order  []string
}

// New creates a new route builder.
func New() *Builder {
	return &Builder{
		routes: make(map[string]*RouteBuilder),
		mounts: make(map[string]bool),
	}
}

// Route declares a route by its dotted name. Missing parents are declared too.
// If the route already exists, it returns the existing builder.
func (b *Builder) Route(name string) *RouteBuilder {
	if rb, ok := b.routes[name]; ok {
		return rb
	}
	if i := strings.LastIndex(name, "."); i > 0 {
		b.Route(name[:i])
	}
	rb := &RouteBuilder{name: name}
	b.routes[name] = rb
	b.order = append(b.order, name)
	return rb
}

// Application returns the builder of the root route.
func (b *Builder) Application() *RouteBuilder {
	if rb, ok := b.routes[router.ApplicationRoute]; ok {
		return rb
	}
	rb := &RouteBuilder{name: router.ApplicationRoute}
	b.routes[router.ApplicationRoute] = rb
	return rb
}

// Mount declares a top-level engine mount. Routes below it ("as.child")
// resolve from the engine's registry; the returned builder configures the
// engine's application route.
func (b *Builder) Mount(as string) *RouteBuilder {
	b.mounts[as] = true
	return b.Route(as)
}

// Map compiles the declared routes into a router.Map.
func (b *Builder) Map() (*router.Map, error) {
	for name := range b.mounts {
		if strings.Contains(name, ".") {
			return nil, fmt.Errorf("mount %q: engines can only be mounted at the top level", name)
		}
	}
	children := make(map[string][]string)
	for _, name := range b.order {
		parent := ""
		if i := strings.LastIndex(name, "."); i > 0 {
			parent = name[:i]
		}
		children[parent] = append(children[parent], name)
	}

	var declare func(r *router.Mapper, parent string)
	declare = func(r *router.Mapper, parent string) {
		for _, full := range children[parent] {
			local := full[strings.LastIndex(full, ".")+1:]
			fn := func(r *router.Mapper) { declare(r, full) }
			if parent == "" && b.mounts[full] {
				r.Mount(local, fn)
				continue
			}
			r.Route(local, fn)
		}
	}
	return router.NewMap(func(r *router.Mapper) { declare(r, "") }), nil
}

// Build compiles the route tree, creates a router and installs every hook and guard.
func (b *Builder) Build(opts ...router.Option) (*router.Router, error) {
	m, err := b.Map()
	if err != nil {
		return nil, fmt.Errorf("failed to build route map: %w", err)
	}
	r := router.New(m, opts...)
	for name, rb := range b.routes {
		h, err := r.Lookup(name)
		if err != nil {
			return nil, fmt.Errorf("failed to bind route %q: %w", name, err)
		}
		rb.apply(h)
	}
	return r, nil
}
