package router

import (
	"context"
	"sync"

	"github.com/aretw0/routechain/pkg/domain"
)

// GuardFunc runs before a route is entered. Returning an error aborts the
// transition; calling t.Redirect replaces its target.
type GuardFunc func(ctx context.Context, t *Transition) error

// Handler is the route object bound to a route name. It is a domain.Node whose
// hooks can be swapped at any time.
type Handler struct {
	name string

	mu    sync.RWMutex
	enter domain.HookFunc
	exit  domain.HookFunc
	guard GuardFunc
}

// NewHandler creates a handler with no hooks.
func NewHandler(name string) *Handler {
	return &Handler{name: name}
}

// NodeName returns the fully qualified route name.
func (h *Handler) NodeName() string { return h.name }

// Hook implements domain.HookProvider.
func (h *Handler) Hook(name domain.HookName) domain.HookFunc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	switch name {
	case domain.HookEnter:
		return h.enter
	case domain.HookExit:
		return h.exit
	}
	return nil
}

// SetOnEnter replaces the onEnter hook. A nil fn removes it.
func (h *Handler) SetOnEnter(fn domain.HookFunc) *Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enter = fn
	return h
}

// SetOnExit replaces the onExit hook. A nil fn removes it.
func (h *Handler) SetOnExit(fn domain.HookFunc) *Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.exit = fn
	return h
}

// OnEnterChain sets an onEnter hook that always returns items.
func (h *Handler) OnEnterChain(items ...domain.Item) *Handler {
	return h.SetOnEnter(staticChain(items))
}

// OnExitChain sets an onExit hook that always returns items.
func (h *Handler) OnExitChain(items ...domain.Item) *Handler {
	return h.SetOnExit(staticChain(items))
}

// SetBeforeModel replaces the guard run when the route is about to be entered.
func (h *Handler) SetBeforeModel(g GuardFunc) *Handler {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.guard = g
	return h
}

// BeforeModel returns the current guard, or nil.
func (h *Handler) BeforeModel() GuardFunc {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.guard
}

// Reset removes every hook and the guard.
func (h *Handler) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.enter, h.exit, h.guard = nil, nil, nil
}

func staticChain(items []domain.Item) domain.HookFunc {
	chain := domain.Chain(append([]domain.Item(nil), items...))
	return func(context.Context) (any, error) {
		return chain, nil
	}
}
