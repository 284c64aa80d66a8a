/*
Package router is a small tree-shaped router that emits transition signals.

It exists to drive the sequencer: a Map declares the route tree, a Registry
resolves route names to Handlers (creating default handlers on first lookup),
and a Router walks URLs or route names into paths of handlers. Every
transition notifies the registered listeners with WillTransition before the
guards run and with DidTransition once the new path is committed. A guard that
fails aborts the transition, so listeners only ever see WillTransition for it.

	m := router.NewMap(func(r *router.Mapper) {
		r.Route("posts", func(r *router.Mapper) {
			r.Route("show")
		})
		r.Mount("admin", func(r *router.Mapper) {
			r.Route("users")
		})
	})
	rt := router.New(m)
	rt.Handler("posts").SetOnEnter(...)
	_ = rt.Visit(ctx, "/posts/show?draft=1")

Mounted sub-applications (engines) resolve their routes from their own
Registry and contribute their own application route to the path.
*/
package router
