/*
Package routechain sequences route lifecycle hooks for a tree-shaped router.

On every transition it works out which routes were exited and which were
entered, calls onExit on the former (innermost first) and onEnter on the latter
(outermost first), and runs the chain of items each hook returns, one item at a
time. When a newer transition begins, the running sequence stops at the next
item boundary and the new one picks up from the routes the hooks actually
reached.

# Concept

A hook returns a Chain: an ordered list of Items, each an action with an
optional condition. A failing item stops its own chain and is reported to the
error sink; the sibling hooks of the sequence still run. Navigation itself is
never blocked or undone by a hook.

# Usage

	r := router.New(router.NewMap(func(m *router.Mapper) {
		m.Route("posts", func(m *router.Mapper) {
			m.Route("show")
		})
	}))

	r.Handler("posts.show").OnEnterChain(
		domain.Do(markAsRead).Named("mark-read"),
		domain.When(isFirstVisit, showTour),
	)

	seq := routechain.Inject(r,
		routechain.WithLogger(logger),
		routechain.WithErrorHandler(func(ctx context.Context, err error) {
			logger.Error("hook failed", "error", err)
		}),
	)

	_ = r.Visit(ctx, "/posts/show")
	_ = seq.Wait(ctx)

Routers other than pkg/router integrate through the ports.TransitionListener
methods (WillTransition and DidTransition) or through the single-event
Transition method.
*/
package routechain
