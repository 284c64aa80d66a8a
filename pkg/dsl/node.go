package dsl

import (
	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/router"
)

// RouteBuilder provides a fluent API for configuring a route's handler.
type RouteBuilder struct {
	name  string
	enter domain.HookFunc
	exit  domain.HookFunc
	guard router.GuardFunc
}

// OnEnter sets a static onEnter chain.
func (r *RouteBuilder) OnEnter(items ...domain.Item) *RouteBuilder {
	r.enter = router.NewHandler(r.name).OnEnterChain(items...).Hook(domain.HookEnter)
	return r
}

// OnExit sets a static onExit chain.
func (r *RouteBuilder) OnExit(items ...domain.Item) *RouteBuilder {
	r.exit = router.NewHandler(r.name).OnExitChain(items...).Hook(domain.HookExit)
	return r
}

// EnterHook sets a dynamic onEnter hook.
func (r *RouteBuilder) EnterHook(fn domain.HookFunc) *RouteBuilder {
	r.enter = fn
	return r
}

// ExitHook sets a dynamic onExit hook.
func (r *RouteBuilder) ExitHook(fn domain.HookFunc) *RouteBuilder {
	r.exit = fn
	return r
}

// Guard sets the route's BeforeModel guard.
func (r *RouteBuilder) Guard(g router.GuardFunc) *RouteBuilder {
	r.guard = g
	return r
}

// Name returns the fully qualified route name.
func (r *RouteBuilder) Name() string { return r.name }

func (r *RouteBuilder) apply(h *router.Handler) {
	if r.enter != nil {
		h.SetOnEnter(r.enter)
	}
	if r.exit != nil {
		h.SetOnExit(r.exit)
	}
	if r.guard != nil {
		h.SetBeforeModel(r.guard)
	}
}
