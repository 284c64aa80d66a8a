/*
Package dsl provides a fluent builder for route trees and their hooks.

It lets a program declare routes, hook chains and guards in one place instead
of building a router.Map and then wiring handlers by hand. Parents are created
implicitly from dotted names.

Example usage:

	b := dsl.New()

	b.Route("posts").
		OnEnter(domain.Do(loadPosts).Named("load"))

	b.Route("posts.show").
		Guard(requireLogin).
		OnExit(domain.Do(saveDraft))

	b.Mount("admin")
	b.Route("admin.users").OnEnter(domain.Do(audit))

	r, err := b.Build(router.WithLogger(logger))
	// ... pass r to routechain.Inject(r)
*/
package dsl
