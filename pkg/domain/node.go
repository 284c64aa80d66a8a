package domain

import (
	"context"
	"reflect"
)

// HookName identifies a lifecycle hook on a Node.
type HookName string

const (
	// HookEnter runs when a node becomes part of the active path.
	HookEnter HookName = "onEnter"
	// HookExit runs when a node leaves the active path.
	HookExit HookName = "onExit"
)

// Node is a participant in the route tree (a route handler).
// Nodes are compared by identity, so implementations should be pointer types.
type Node interface {
	NodeName() string
}

// Enterer is implemented by nodes with a statically typed onEnter hook.
type Enterer interface {
	OnEnter(ctx context.Context) (Chain, error)
}

// Exiter is implemented by nodes with a statically typed onExit hook.
type Exiter interface {
	OnExit(ctx context.Context) (Chain, error)
}

// HookFunc is a hook implemented across a dynamic boundary (scripts, registries).
// Its result must be an ordered chain of items; see AsChain.
type HookFunc func(ctx context.Context) (any, error)

// HookProvider lets a node expose its hooks at runtime.
// Hook returns nil when the node does not define the named hook.
type HookProvider interface {
	Hook(name HookName) HookFunc
}

// ResolveHook returns the hook a node exposes under name, or nil.
// Dynamic hooks take precedence over the typed Enterer/Exiter methods.
func ResolveHook(n Node, name HookName) HookFunc {
	if n == nil {
		return nil
	}
	if p, ok := n.(HookProvider); ok {
		if h := p.Hook(name); h != nil {
			return h
		}
	}
	switch name {
	case HookEnter:
		if e, ok := n.(Enterer); ok {
			return func(ctx context.Context) (any, error) { return e.OnEnter(ctx) }
		}
	case HookExit:
		if x, ok := n.(Exiter); ok {
			return func(ctx context.Context) (any, error) { return x.OnExit(ctx) }
		}
	}
	return nil
}

// SameNode reports whether a and b are the same node instance.
// Nodes of non-comparable dynamic types never match.
func SameNode(a, b Node) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) || !ta.Comparable() {
		return false
	}
	return a == b
}

// Path is an ordered root-to-leaf sequence of active nodes.
type Path []Node

// Contains reports whether n is a member of p, by identity.
func (p Path) Contains(n Node) bool {
	for _, m := range p {
		if SameNode(m, n) {
			return true
		}
	}
	return false
}

// Leaf returns the innermost node of the path, or nil when the path is empty.
func (p Path) Leaf() Node {
	if len(p) == 0 {
		return nil
	}
	return p[len(p)-1]
}

// Names returns the node names in path order.
func (p Path) Names() []string {
	names := make([]string, 0, len(p))
	for _, n := range p {
		if n == nil {
			continue
		}
		names = append(names, n.NodeName())
	}
	return names
}

// Clone returns a copy of p that shares no backing array with it.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	out := make(Path, len(p))
	copy(out, p)
	return out
}

// HookRef pairs a node with the hook to run on it.
type HookRef struct {
	Node Node
	Hook HookName
}

// Name returns the name of the referenced node.
func (r HookRef) Name() string {
	if r.Node == nil {
		return ""
	}
	return r.Node.NodeName()
}

// Batch is the ordered set of hooks to run for one transition.
type Batch []HookRef
