/*
Package domain contains the core models of the routechain sequencer.

It defines the participants of a route tree transition (Nodes and Paths), the work a
lifecycle hook hands back (Chains of guarded Items), the two-valued Execution State and
the errors and events the sequencer produces. The package is kept pure: no I/O, no
goroutines, no persistence.

# Key Entities

  - Node: a route handler that may expose onEnter/onExit hooks.
  - Path: the ordered root-to-leaf list of active Nodes at a point in time.
  - HookRef / Batch: the (Node, hook) pairs to run for one transition.
  - Item / Chain: the ordered, optionally guarded actions a hook returns.
  - LifecycleHooks: observability callbacks fired while a sequence runs.
*/
package domain
