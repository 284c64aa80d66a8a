package router

import (
	"context"
	"net/url"
)

// Transition describes a navigation in progress. It travels in the context
// handed to listeners, and from there to every hook and chain item of the
// sequence it starts.
type Transition struct {
	From      string
	To        string
	URL       string
	Query     url.Values
	Redirects int

	router     *Router
	redirectTo string
}

// Router returns the router performing the transition.
func (t *Transition) Router() *Router { return t.router }

// Redirect makes a guard replace the transition's target with another route.
// The current transition is abandoned once the guard returns.
func (t *Transition) Redirect(name string) {
	t.redirectTo = name
}

// QueryValue returns the first value of a query parameter.
func (t *Transition) QueryValue(key string) string {
	if t == nil || t.Query == nil {
		return ""
	}
	return t.Query.Get(key)
}

type transitionKey struct{}

// WithTransition returns a context carrying t.
func WithTransition(ctx context.Context, t *Transition) context.Context {
	return context.WithValue(ctx, transitionKey{}, t)
}

// TransitionFromContext returns the transition carried by ctx.
func TransitionFromContext(ctx context.Context) (*Transition, bool) {
	t, ok := ctx.Value(transitionKey{}).(*Transition)
	return t, ok && t != nil
}

// FromContext returns the router of the transition carried by ctx, or nil.
func FromContext(ctx context.Context) *Router {
	if t, ok := TransitionFromContext(ctx); ok {
		return t.router
	}
	return nil
}
