package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrActionNotFound is returned by Execute for unregistered names.
var ErrActionNotFound = errors.New("action not found")

// ActionFunc defines the signature of a custom script action.
// It receives the route the item belongs to and the item's raw args.
type ActionFunc func(ctx context.Context, route string, args map[string]any) error

// Registry manages the custom actions available to route scripts.
type Registry struct {
	mu      sync.RWMutex
	actions map[string]ActionFunc
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		actions: make(map[string]ActionFunc),
	}
}

// Register adds an action to the registry.
// If an action with the same name exists, it is overwritten.
func (r *Registry) Register(name string, fn ActionFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.actions[name] = fn
}

// Lookup returns the action registered under name.
func (r *Registry) Lookup(name string) (ActionFunc, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn, ok := r.actions[name]
	return fn, ok
}

// Names returns the registered action names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.actions))
	for name := range r.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Execute looks up an action by name and runs it for route.
func (r *Registry) Execute(ctx context.Context, name, route string, args map[string]any) error {
	fn, ok := r.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: %s", ErrActionNotFound, name)
	}
	return fn(ctx, route, args)
}
