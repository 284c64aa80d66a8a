package runtime

import "github.com/aretw0/routechain/pkg/domain"

// Plan is the unfiltered difference between two route paths.
type Plan struct {
	// Exited holds nodes of the previous path missing from the next one, innermost first.
	Exited []domain.Node
	// Entered holds nodes of the next path missing from the previous one, outermost first.
	Entered []domain.Node
}

// Diff compares two paths by node identity.
// Trees are shallow, so membership is a linear search.
func Diff(prev, next domain.Path) Plan {
	var plan Plan
	for i := len(prev) - 1; i >= 0; i-- {
		n := prev[i]
		if n != nil && !next.Contains(n) {
			plan.Exited = append(plan.Exited, n)
		}
	}
	for _, n := range next {
		if n != nil && !prev.Contains(n) {
			plan.Entered = append(plan.Entered, n)
		}
	}
	return plan
}

// Empty reports whether the transition changes no node.
func (p Plan) Empty() bool {
	return len(p.Exited) == 0 && len(p.Entered) == 0
}

// Steps returns every exit followed by every enter, including nodes that do not
// implement the hook. The controller walks these to keep its active path exact.
func (p Plan) Steps() domain.Batch {
	steps := make(domain.Batch, 0, len(p.Exited)+len(p.Entered))
	for _, n := range p.Exited {
		steps = append(steps, domain.HookRef{Node: n, Hook: domain.HookExit})
	}
	for _, n := range p.Entered {
		steps = append(steps, domain.HookRef{Node: n, Hook: domain.HookEnter})
	}
	return steps
}

// Batches returns the exit and enter batches, filtered to nodes that define the hook.
func (p Plan) Batches() (exit, enter domain.Batch) {
	for _, n := range p.Exited {
		if domain.ResolveHook(n, domain.HookExit) != nil {
			exit = append(exit, domain.HookRef{Node: n, Hook: domain.HookExit})
		}
	}
	for _, n := range p.Entered {
		if domain.ResolveHook(n, domain.HookEnter) != nil {
			enter = append(enter, domain.HookRef{Node: n, Hook: domain.HookEnter})
		}
	}
	return exit, enter
}

// ComputeHookBatches returns the hooks a transition from prev to next must run:
// onExit innermost first, then onEnter outermost first.
func ComputeHookBatches(prev, next domain.Path) (exit, enter domain.Batch) {
	return Diff(prev, next).Batches()
}
