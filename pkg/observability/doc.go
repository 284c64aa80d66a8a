/*
Package observability provides lifecycle hooks for monitoring the sequencer.

It includes a combinator for stacking several domain.LifecycleHooks, hooks that
write sequence, hook and item events to a slog.Logger, and Prometheus metrics
driven by the same events.
*/
package observability
