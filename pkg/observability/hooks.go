package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/routechain/pkg/domain"
)

// Combine returns hooks that call every non-nil callback of all, in order.
func Combine(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var (
		seqStart []func(context.Context, *domain.SequenceEvent)
		seqEnd   []func(context.Context, *domain.SequenceEvent)
		hkStart  []func(context.Context, *domain.HookEvent)
		hkEnd    []func(context.Context, *domain.HookEvent)
		itemEnd  []func(context.Context, *domain.ItemEvent)
	)
	for _, h := range all {
		if h.OnSequenceStart != nil {
			seqStart = append(seqStart, h.OnSequenceStart)
		}
		if h.OnSequenceEnd != nil {
			seqEnd = append(seqEnd, h.OnSequenceEnd)
		}
		if h.OnHookStart != nil {
			hkStart = append(hkStart, h.OnHookStart)
		}
		if h.OnHookEnd != nil {
			hkEnd = append(hkEnd, h.OnHookEnd)
		}
		if h.OnItemEnd != nil {
			itemEnd = append(itemEnd, h.OnItemEnd)
		}
	}
	return domain.LifecycleHooks{
		OnSequenceStart: fanOut(seqStart),
		OnSequenceEnd:   fanOut(seqEnd),
		OnHookStart:     fanOut(hkStart),
		OnHookEnd:       fanOut(hkEnd),
		OnItemEnd:       fanOut(itemEnd),
	}
}

func fanOut[E any](fns []func(context.Context, E)) func(context.Context, E) {
	switch len(fns) {
	case 0:
		return nil
	case 1:
		return fns[0]
	}
	return func(ctx context.Context, ev E) {
		for _, fn := range fns {
			fn(ctx, ev)
		}
	}
}

// LoggingHooks logs every sequence at info level, failed hooks at warn level
// and the rest at debug level.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequenceStart: func(ctx context.Context, e *domain.SequenceEvent) {
			logger.DebugContext(ctx, "sequence_start",
				"sequence", e.Sequence,
				"previous", e.Previous,
				"next", e.Next,
			)
		},
		OnSequenceEnd: func(ctx context.Context, e *domain.SequenceEvent) {
			logger.InfoContext(ctx, "sequence_end",
				"sequence", e.Sequence,
				"status", e.Status,
				"exits", e.Exits,
				"enters", e.Enters,
				"failures", e.Failures,
				"duration", e.Duration,
			)
		},
		OnHookEnd: func(ctx context.Context, e *domain.HookEvent) {
			if e.Err != nil {
				logger.WarnContext(ctx, "hook_end",
					"sequence", e.Sequence,
					"route", e.Node,
					"hook", e.Hook,
					"error", e.Err,
				)
				return
			}
			logger.DebugContext(ctx, "hook_end",
				"sequence", e.Sequence,
				"route", e.Node,
				"hook", e.Hook,
				"items", e.Items,
				"superseded", e.Superseded,
			)
		},
		OnItemEnd: func(ctx context.Context, e *domain.ItemEvent) {
			logger.DebugContext(ctx, "item_end",
				"sequence", e.Sequence,
				"route", e.Node,
				"hook", e.Hook,
				"item", e.Name,
				"skipped", e.Skipped,
			)
		},
	}
}
