package runtime

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/aretw0/routechain/pkg/ports"
)

// HookInvoker runs a batch of hooks and drives the ChainRunner over each result.
type HookInvoker struct {
	chains *ChainRunner
	sink   ports.ErrorSink
	logger *slog.Logger
	hooks  domain.LifecycleHooks
}

// NewHookInvoker creates an invoker with its own ChainRunner.
func NewHookInvoker(opts ...Option) *HookInvoker {
	s := defaultSettings()
	for _, opt := range opts {
		opt(&s)
	}
	return newHookInvoker(s)
}

func newHookInvoker(s settings) *HookInvoker {
	return &HookInvoker{
		chains: newChainRunner(s),
		sink:   s.sink,
		logger: s.logger,
		hooks:  s.hooks,
	}
}

// RunBatch invokes every hook of batch in order.
//
// visit, when set, is called for each ref right before its hook would run, even
// if the node turns out not to define it. A failing hook is reported and the
// batch moves on; only an expired token stops it, in which case RunBatch returns
// domain.ErrSuperseded. failures counts the hooks that were reported.
func (h *HookInvoker) RunBatch(ctx context.Context, tok Token, batch domain.Batch, visit func(domain.HookRef)) (failures int, err error) {
	for _, ref := range batch {
		if !tok.Valid() {
			return failures, domain.ErrSuperseded
		}
		if visit != nil {
			visit(ref)
		}
		hook := domain.ResolveHook(ref.Node, ref.Hook)
		if hook == nil {
			continue
		}
		if err := h.Invoke(ctx, tok, ref, hook); err != nil {
			if errors.Is(err, domain.ErrSuperseded) {
				return failures, err
			}
			failures++
			h.report(ctx, ref, err)
		}
	}
	return failures, nil
}

// Invoke calls a single hook and runs the chain it returns.
func (h *HookInvoker) Invoke(ctx context.Context, tok Token, ref domain.HookRef, hook domain.HookFunc) (err error) {
	start := time.Now()
	ev := &domain.HookEvent{
		Timestamp: start,
		Sequence:  tok.Sequence(),
		Node:      ref.Name(),
		Hook:      ref.Hook,
	}
	if h.hooks.OnHookStart != nil {
		h.hooks.OnHookStart(ctx, ev)
	}
	defer func() {
		ev.Duration = time.Since(start)
		if errors.Is(err, domain.ErrSuperseded) {
			ev.Superseded = true
		} else {
			ev.Err = err
		}
		if h.hooks.OnHookEnd != nil {
			h.hooks.OnHookEnd(ctx, ev)
		}
	}()

	result, err := callHook(ctx, hook)
	if err != nil {
		return &domain.HookError{Node: ref.Name(), Hook: ref.Hook, Err: err}
	}

	chain, err := domain.AsChain(result)
	if err != nil {
		var pv *domain.ProtocolViolationError
		if errors.As(err, &pv) {
			pv.Node = ref.Name()
			pv.Hook = ref.Hook
		}
		return err
	}
	ev.Items = len(chain)

	return h.chains.Run(ctx, tok, ref, chain)
}

func (h *HookInvoker) report(ctx context.Context, ref domain.HookRef, err error) {
	h.logger.Warn("hook failed", "route", ref.Name(), "hook", ref.Hook, "error", err)
	if h.sink == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			h.logger.Error("error sink panicked", "panic", r)
		}
	}()
	h.sink.Report(ctx, err)
}

func callHook(ctx context.Context, hook domain.HookFunc) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, domain.PanicError(r)
		}
	}()
	return hook(ctx)
}
