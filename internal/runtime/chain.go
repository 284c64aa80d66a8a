package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/routechain/pkg/domain"
)

// ChainRunner executes the items of one hook's chain in order.
type ChainRunner struct {
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// NewChainRunner creates a runner. Only logger and lifecycle hook options apply.
func NewChainRunner(opts ...Option) *ChainRunner {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return newChainRunner(s)
}

func newChainRunner(s settings) *ChainRunner {
	return &ChainRunner{logger: s.logger, hooks: s.hooks}
}

// Run executes chain on behalf of ref.Node.
// The token is checked before every item; once it expires Run returns
// domain.ErrSuperseded without starting another item. The first failing item
// stops the chain and its error is returned as a *domain.ChainItemError.
func (r *ChainRunner) Run(ctx context.Context, tok Token, ref domain.HookRef, chain domain.Chain) error {
	for i, item := range chain {
		if !tok.Valid() {
			r.logger.Debug("chain superseded", "route", ref.Name(), "hook", ref.Hook, "remaining", len(chain)-i)
			return domain.ErrSuperseded
		}
		if err := r.runItem(ctx, tok, ref, i, item); err != nil {
			return err
		}
	}
	return nil
}

func (r *ChainRunner) runItem(ctx context.Context, tok Token, ref domain.HookRef, index int, item domain.Item) (err error) {
	start := time.Now()
	ev := &domain.ItemEvent{
		Timestamp: start,
		Sequence:  tok.Sequence(),
		Node:      ref.Name(),
		Hook:      ref.Hook,
		Index:     index,
		Name:      item.Label(index),
	}
	defer func() {
		ev.Err = err
		ev.Duration = time.Since(start)
		if r.hooks.OnItemEnd != nil {
			r.hooks.OnItemEnd(ctx, ev)
		}
	}()

	fail := func(phase domain.ItemPhase, cause error) error {
		return &domain.ChainItemError{
			Node:  ref.Name(),
			Hook:  ref.Hook,
			Index: index,
			Item:  ev.Name,
			Phase: phase,
			Err:   cause,
		}
	}

	if item.Condition != nil {
		ok, cerr := evalCondition(ctx, item.Condition, ref.Node)
		if cerr != nil {
			return fail(domain.PhaseCondition, cerr)
		}
		if !ok {
			ev.Skipped = true
			return nil
		}
	}
	if item.Action == nil {
		return fail(domain.PhaseAction, domain.ErrProtocolViolation)
	}
	if aerr := runAction(ctx, item.Action, ref.Node); aerr != nil {
		return fail(domain.PhaseAction, aerr)
	}
	return nil
}

func evalCondition(ctx context.Context, cond domain.ConditionFunc, node domain.Node) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, domain.PanicError(r)
		}
	}()
	return cond(ctx, node)
}

func runAction(ctx context.Context, action domain.ActionFunc, node domain.Node) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = domain.PanicError(r)
		}
	}()
	return action(ctx, node)
}
