package tui

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aretw0/routechain/pkg/domain"
	"github.com/muesli/termenv"
)

// TracePrinter writes one line per hook and chain item as sequences run.
type TracePrinter struct {
	mu  sync.Mutex
	w   io.Writer
	out *termenv.Output
}

// NewTracePrinter creates a printer that detects the color profile of w.
func NewTracePrinter(w io.Writer, opts ...termenv.OutputOption) *TracePrinter {
	return &TracePrinter{w: w, out: termenv.NewOutput(w, opts...)}
}

// LifecycleHooks returns the hooks that drive the printer.
func (p *TracePrinter) LifecycleHooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnSequenceStart: func(_ context.Context, e *domain.SequenceEvent) {
			p.println(p.out.String(fmt.Sprintf("#%d %v -> %v", e.Sequence, e.Previous, e.Next)).Bold())
		},
		OnHookEnd: func(_ context.Context, e *domain.HookEvent) {
			line := fmt.Sprintf("  %s %s", e.Hook, e.Node)
			switch {
			case e.Err != nil:
				p.println(p.out.String(line + ": " + e.Err.Error()).Foreground(p.out.Color("#fb7185")))
			case e.Superseded:
				p.println(p.out.String(line + " (superseded)").Faint())
			default:
				p.println(p.out.String(fmt.Sprintf("%s [%d items]", line, e.Items)).Foreground(p.out.Color("#818cf8")))
			}
		},
		OnItemEnd: func(_ context.Context, e *domain.ItemEvent) {
			line := "    - " + e.Name
			switch {
			case e.Err != nil:
				p.println(p.out.String(line + ": " + e.Err.Error()).Foreground(p.out.Color("#fb7185")))
			case e.Skipped:
				p.println(p.out.String(line + " (skipped)").Faint())
			default:
				p.println(p.out.String(line))
			}
		},
		OnSequenceEnd: func(_ context.Context, e *domain.SequenceEvent) {
			p.println(p.out.String(fmt.Sprintf("#%d %s", e.Sequence, e.Status)).Faint())
		},
	}
}

func (p *TracePrinter) println(s termenv.Style) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.w, s)
}
