package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/routechain/pkg/domain"
	"go.uber.org/atomic"
)

// Controller is the sequence controller: it owns the execution state, turns
// router transitions into hook sequences and is the only writer of the
// active path.
//
// Sequences run on their own goroutine, one at a time. A new transition
// expires the current sequence's token; the stale sequence finishes whatever
// item is in flight, notices the expired token and stops, and only then does
// the next sequence compute its diff and start.
type Controller struct {
	invoker *HookInvoker
	logger  *slog.Logger
	hooks   domain.LifecycleHooks

	state   atomic.Int32
	current atomic.Uint64

	mu     sync.Mutex
	active domain.Path
	primed bool
	last   *Run
}

// NewController creates an idle controller.
func NewController(opts ...Option) *Controller {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	c := &Controller{
		invoker: newHookInvoker(s),
		logger:  s.logger,
		hooks:   s.hooks,
	}
	c.state.Store(int32(domain.StateIdle))
	return c
}

// State returns the current execution state.
func (c *Controller) State() domain.ExecutionState {
	return domain.ExecutionState(c.state.Load())
}

// ActivePath returns the path the hooks consider active: every exit that was
// dispatched has been removed from it and every enter that was dispatched has
// been added.
func (c *Controller) ActivePath() domain.Path {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active.Clone()
}

// WillTransition invalidates the running sequence. A transition that is then
// aborted by the router leaves the controller idle with nothing scheduled.
func (c *Controller) WillTransition(ctx context.Context) {
	c.mu.Lock()
	seq := c.current.Inc()
	c.state.Store(int32(domain.StateIdle))
	c.mu.Unlock()
	c.logger.Debug("transition starting", "sequence", seq)
}

// DidTransition starts a sequence towards next, diffing against the retained
// active path.
func (c *Controller) DidTransition(ctx context.Context, next domain.Path) {
	c.Transition(ctx, nil, next)
}

// Transition starts a sequence for a transition from prev to next and returns
// its handle. prev is only consulted for the very first sequence; afterwards
// the controller diffs against its own active path.
func (c *Controller) Transition(ctx context.Context, prev, next domain.Path) *Run {
	c.mu.Lock()
	seq := c.current.Inc()
	c.state.Store(int32(domain.StateRunning))
	run := &Run{
		seq:  seq,
		prev: prev.Clone(),
		next: next.Clone(),
		done: make(chan struct{}),
	}
	run.result.Sequence = seq
	run.result.Status = domain.RunPending
	prior := c.last
	c.last = run
	c.mu.Unlock()

	go c.execute(context.WithoutCancel(ctx), run, prior)
	return run
}

// Wait blocks until the most recent sequence has finished.
func (c *Controller) Wait(ctx context.Context) error {
	for {
		c.mu.Lock()
		run := c.last
		c.mu.Unlock()
		if run == nil {
			return nil
		}
		select {
		case <-run.done:
		case <-ctx.Done():
			return ctx.Err()
		}
		c.mu.Lock()
		settled := c.last == run
		c.mu.Unlock()
		if settled {
			return nil
		}
	}
}

func (c *Controller) execute(ctx context.Context, run *Run, prior *Run) {
	defer close(run.done)
	if prior != nil {
		<-prior.done
	}

	tok := sequenceToken{c: c, seq: run.seq}

	c.mu.Lock()
	base := c.active
	if !c.primed {
		base = run.prev
		c.active = run.prev.Clone()
		c.primed = true
	}
	plan := Diff(base, run.next)
	c.mu.Unlock()

	start := time.Now()
	ev := &domain.SequenceEvent{
		Timestamp: start,
		Sequence:  run.seq,
		Previous:  base.Names(),
		Next:      run.next.Names(),
		Exits:     len(plan.Exited),
		Enters:    len(plan.Entered),
	}
	if c.hooks.OnSequenceStart != nil {
		c.hooks.OnSequenceStart(ctx, ev)
	}
	c.logger.Debug("sequence started", "sequence", run.seq, "exits", ev.Exits, "enters", ev.Enters)

	failures, err := c.invoker.RunBatch(ctx, tok, plan.Steps(), func(ref domain.HookRef) {
		c.visit(run, ref)
	})

	status := domain.RunCompleted
	if err != nil {
		status = domain.RunSuperseded
	}

	c.mu.Lock()
	if status == domain.RunCompleted {
		c.active = run.next.Clone()
		if c.current.Load() == run.seq {
			c.state.Store(int32(domain.StateIdle))
		}
	}
	run.result.Status = status
	run.result.Failures = failures
	c.mu.Unlock()

	ev.Status = status
	ev.Failures = failures
	ev.Duration = time.Since(start)
	if c.hooks.OnSequenceEnd != nil {
		c.hooks.OnSequenceEnd(ctx, ev)
	}
	c.logger.Debug("sequence finished", "sequence", run.seq, "status", status, "failures", failures)
}

// visit books a step into the active path as the batch reaches it.
func (c *Controller) visit(run *Run, ref domain.HookRef) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch ref.Hook {
	case domain.HookExit:
		for i, n := range c.active {
			if domain.SameNode(n, ref.Node) {
				c.active = append(c.active[:i:i], c.active[i+1:]...)
				break
			}
		}
		run.result.Exited = append(run.result.Exited, ref.Name())
	case domain.HookEnter:
		if !c.active.Contains(ref.Node) {
			c.active = append(c.active, ref.Node)
		}
		run.result.Entered = append(run.result.Entered, ref.Name())
	}
}

// RunResult summarises a finished sequence.
type RunResult struct {
	Sequence uint64
	Status   domain.RunStatus
	// Exited and Entered list the nodes the sequence reached, in order,
	// whether or not they defined the hook.
	Exited   []string
	Entered  []string
	Failures int
}

// Run is the handle of one sequence.
type Run struct {
	seq    uint64
	prev   domain.Path
	next   domain.Path
	done   chan struct{}
	result RunResult
}

// Sequence returns the sequence number.
func (r *Run) Sequence() uint64 { return r.seq }

// Done is closed once the sequence has stopped scheduling work.
func (r *Run) Done() <-chan struct{} { return r.done }

// Wait blocks until the sequence finished and returns its result.
func (r *Run) Wait(ctx context.Context) (RunResult, error) {
	select {
	case <-r.done:
		return r.Result(), nil
	case <-ctx.Done():
		return RunResult{Sequence: r.seq, Status: domain.RunPending}, ctx.Err()
	}
}

// Result returns the outcome; it reports RunPending until Done is closed.
func (r *Run) Result() RunResult {
	select {
	case <-r.done:
		return r.result
	default:
		return RunResult{Sequence: r.seq, Status: domain.RunPending}
	}
}
