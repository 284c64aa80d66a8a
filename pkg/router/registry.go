package router

import (
	"sort"
	"sync"
)

// Registry resolves route names to handlers, like a DI container: looking up
// a name that was never registered creates a default handler and keeps it, so
// hooks can be attached before or after the router starts.
type Registry struct {
	namespace string

	mu       sync.Mutex
	handlers map[string]*Handler
}

// NewRegistry creates the registry of the host application.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]*Handler)}
}

// NewEngineRegistry creates the registry of an engine mounted as mount.
// Handler names are qualified with the mount name and the engine's
// application handler is named after the mount itself.
func NewEngineRegistry(mount string) *Registry {
	r := NewRegistry()
	r.namespace = mount
	return r
}

// Namespace returns the mount name, or "" for the host application.
func (r *Registry) Namespace() string { return r.namespace }

// Register installs h under the local route name, replacing any previous handler.
func (r *Registry) Register(local string, h *Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[local] = h
}

// Lookup returns the handler of a local route name, creating a default one if needed.
func (r *Registry) Lookup(local string) *Handler {
	r.mu.Lock()
	defer r.mu.Unlock()
	if h, ok := r.handlers[local]; ok {
		return h
	}
	h := NewHandler(r.qualify(local))
	r.handlers[local] = h
	return h
}

// Names returns the local names that have a handler, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) qualify(local string) string {
	switch {
	case r.namespace == "":
		return local
	case local == ApplicationRoute:
		return r.namespace
	default:
		return r.namespace + "." + local
	}
}
