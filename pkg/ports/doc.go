/*
Package ports defines the boundary interfaces of the routechain sequencer.

These interfaces decouple the sequencing core from the router that drives it and
from wherever failures end up.

# Key Interfaces

  - TransitionListener: receives "will transition" / "did transition" signals from a router.
  - ErrorSink: receives every hook or chain failure; failures never propagate to the router.
  - Navigator and Sequencer: what the HTTP and MCP control surfaces drive and observe.
*/
package ports
